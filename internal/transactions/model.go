package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidType reports whether typ is one of the two transaction kinds.
func ValidType(typ string) bool {
	return typ == TypeIncome || typ == TypeExpense
}

// Transaction is a persisted income or expense record.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        string          `db:"type" json:"type"` // "income" | "expense"
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description" json:"description,omitempty"`
	Date        time.Time       `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type CreateTransactionRequest struct {
	Amount      string `json:"amount"` // decimal string, e.g. "250.50"
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
}

type UpdateTransactionRequest struct {
	Amount      *string `json:"amount"`
	Type        *string `json:"type"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}
