package budgets

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodAnnual    = "annual"
)

// ValidPeriod reports whether period is one of the supported budget periods.
func ValidPeriod(period string) bool {
	switch period {
	case PeriodMonthly, PeriodQuarterly, PeriodAnnual:
		return true
	default:
		return false
	}
}

// Budget is a per-category spending cap over a date window.
type Budget struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Category  string          `db:"category" json:"category"`
	Period    string          `db:"period" json:"period"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	StartDate time.Time       `db:"start_date" json:"start_date"`
	EndDate   time.Time       `db:"end_date" json:"end_date"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type CreateBudgetRequest struct {
	Category  string `json:"category"`
	Period    string `json:"period"`
	Amount    string `json:"amount"` // decimal string
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type UpdateBudgetRequest struct {
	Category  *string `json:"category"`
	Period    *string `json:"period"`
	Amount    *string `json:"amount"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}
