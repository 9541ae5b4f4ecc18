package budgets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("budget not found")

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

const selectColumns = `id::text, user_id::text, category, period, amount::text, start_date, end_date, created_at, updated_at`

func (r *Repo) List(ctx context.Context, userID string) ([]Budget, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+selectColumns+` FROM budgets
		 WHERE user_id = $1::uuid
		 ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, userID string, category, period string, amount decimal.Decimal, start, end time.Time) (*Budget, error) {
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, category, period, amount, start_date, end_date)
		 VALUES ($1::uuid, $2, $3, $4::numeric, $5::date, $6::date)
		 RETURNING `+selectColumns,
		userID, category, period, amount.StringFixed(2), start, end,
	)
	return scanBudget(row)
}

func (r *Repo) Get(ctx context.Context, userID, id string) (*Budget, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM budgets WHERE user_id = $1::uuid AND id = $2::uuid`,
		userID, id,
	)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repo) Update(ctx context.Context, userID, id string, category, period string, amount decimal.Decimal, start, end time.Time) (*Budget, error) {
	row := r.Pool.QueryRow(ctx,
		`UPDATE budgets
		 SET category = $3, period = $4, amount = $5::numeric, start_date = $6::date, end_date = $7::date, updated_at = NOW()
		 WHERE user_id = $1::uuid AND id = $2::uuid
		 RETURNING `+selectColumns,
		userID, id, category, period, amount.StringFixed(2), start, end,
	)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM budgets WHERE user_id = $1::uuid AND id = $2::uuid`,
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

func scanBudget(row rowScanner) (*Budget, error) {
	var b Budget
	var amount string
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Period, &amount, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("bad amount in row: %w", err)
	}
	b.Amount = d
	return &b, nil
}
