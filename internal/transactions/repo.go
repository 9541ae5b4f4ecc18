package transactions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// ListFilter narrows List results; zero values mean "no filter".
type ListFilter struct {
	Type     string
	Category string
	Start    *time.Time
	End      *time.Time
}

const selectColumns = `id::text, user_id::text, amount::text, type, category, description, date, created_at, updated_at`

func (r *Repo) List(ctx context.Context, userID string, f ListFilter) ([]Transaction, error) {
	q := `SELECT ` + selectColumns + ` FROM transactions WHERE user_id = $1::uuid`
	args := []any{userID}

	if f.Type != "" {
		args = append(args, f.Type)
		q += ` AND type = $` + strconv.Itoa(len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		q += ` AND category = $` + strconv.Itoa(len(args))
	}
	if f.Start != nil {
		args = append(args, *f.Start)
		q += ` AND date >= $` + strconv.Itoa(len(args)) + `::date`
	}
	if f.End != nil {
		args = append(args, *f.End)
		q += ` AND date <= $` + strconv.Itoa(len(args)) + `::date`
	}
	q += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListBetween returns the user's transactions of the given type (empty = all)
// with date inside the inclusive [start, end] bounds; a nil bound is open.
// Results are ordered date ascending so aggregation sees a stable feed.
func (r *Repo) ListBetween(ctx context.Context, userID, typ string, start, end *time.Time) ([]Transaction, error) {
	q := `SELECT ` + selectColumns + ` FROM transactions WHERE user_id = $1::uuid`
	args := []any{userID}

	if typ != "" {
		args = append(args, typ)
		q += ` AND type = $` + strconv.Itoa(len(args))
	}
	if start != nil {
		args = append(args, *start)
		q += ` AND date >= $` + strconv.Itoa(len(args)) + `::date`
	}
	if end != nil {
		args = append(args, *end)
		q += ` AND date <= $` + strconv.Itoa(len(args)) + `::date`
	}
	q += ` ORDER BY date ASC, created_at ASC`

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *Repo) Create(ctx context.Context, userID string, amount decimal.Decimal, typ, category, description string, date time.Time) (*Transaction, error) {
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, amount, type, category, description, date)
		 VALUES ($1::uuid, $2::numeric, $3, $4, $5, $6::date)
		 RETURNING `+selectColumns,
		userID, amount.StringFixed(2), typ, category, description, date,
	)
	return scanTransaction(row)
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*Transaction, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE user_id = $1::uuid AND id = $2::uuid`,
		userID, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) Update(ctx context.Context, userID, id string, amount decimal.Decimal, typ, category, description string, date time.Time) (*Transaction, error) {
	row := r.Pool.QueryRow(ctx,
		`UPDATE transactions
		 SET amount = $3::numeric, type = $4, category = $5, description = $6, date = $7::date, updated_at = NOW()
		 WHERE user_id = $1::uuid AND id = $2::uuid
		 RETURNING `+selectColumns,
		userID, id, amount.StringFixed(2), typ, category, description, date,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM transactions WHERE user_id = $1::uuid AND id = $2::uuid`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var t Transaction
	var amount string
	err := row.Scan(&t.ID, &t.UserID, &amount, &t.Type, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("bad amount in row: %w", err)
	}
	t.Amount = d
	return &t, nil
}

type pgxRows interface {
	Next() bool
	Err() error
	Scan(dest ...any) error
}

func scanTransactions(rows pgxRows) ([]Transaction, error) {
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
