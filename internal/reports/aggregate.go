package reports

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsilmaro/c6/internal/transactions"
)

// Range bounds a report query; both ends are inclusive and a nil end is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

func (r Range) Validate() error {
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// SummaryRow is one aggregated output unit. Category rows carry Category only;
// trend rows carry Month (YYYY-MM) and Kind.
type SummaryRow struct {
	Category string          `json:"category,omitempty"`
	Month    string          `json:"month,omitempty"`
	Kind     string          `json:"kind,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

// GroupKey renders the row's group as a single label for export.
func (r SummaryRow) GroupKey() string {
	if r.Category != "" {
		return r.Category
	}
	return r.Month + " " + r.Kind
}

// Feed is the read-only transaction source the engine aggregates over. It is
// assumed to be scoped to the given user by the storage layer.
type Feed interface {
	ListBetween(ctx context.Context, userID, typ string, start, end *time.Time) ([]transactions.Transaction, error)
}

// Aggregator turns a transaction feed into ordered per-group totals. It holds
// no state across calls and is safe for concurrent use.
type Aggregator struct {
	Feed Feed
	Now  func() time.Time
}

func NewAggregator(feed Feed) *Aggregator {
	return &Aggregator{Feed: feed, Now: time.Now}
}

// SpendingByCategory sums expenses per category, ordered by total descending
// with category name ascending as the tie-breaker.
func (a *Aggregator) SpendingByCategory(ctx context.Context, userID string, r Range) ([]SummaryRow, error) {
	return a.byCategory(ctx, userID, transactions.TypeExpense, r)
}

// IncomeByCategory sums income per category with the same ordering contract
// as SpendingByCategory.
func (a *Aggregator) IncomeByCategory(ctx context.Context, userID string, r Range) ([]SummaryRow, error) {
	return a.byCategory(ctx, userID, transactions.TypeIncome, r)
}

func (a *Aggregator) byCategory(ctx context.Context, userID, typ string, r Range) ([]SummaryRow, error) {
	txs, err := a.Feed.ListBetween(ctx, userID, typ, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(txs))
	for _, t := range txs {
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	rows := make([]SummaryRow, 0, len(totals))
	for category, total := range totals {
		rows = append(rows, SummaryRow{Category: category, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

// MonthlyTrends sums amounts per (calendar month, transaction type) over the
// trailing monthsBack months including the current one. Rows are ordered by
// month ascending, then expense before income within a month.
func (a *Aggregator) MonthlyTrends(ctx context.Context, userID string, monthsBack int) ([]SummaryRow, error) {
	if monthsBack <= 0 {
		monthsBack = 12
	}

	now := a.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := firstOfMonth.AddDate(0, -(monthsBack - 1), 0)
	end := firstOfMonth.AddDate(0, 1, -1)

	txs, err := a.Feed.ListBetween(ctx, userID, "", &start, &end)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		month string
		kind  string
	}
	totals := make(map[bucket]decimal.Decimal)
	for _, t := range txs {
		b := bucket{month: t.Date.Format("2006-01"), kind: t.Type}
		totals[b] = totals[b].Add(t.Amount)
	}

	rows := make([]SummaryRow, 0, len(totals))
	for b, total := range totals {
		rows = append(rows, SummaryRow{Month: b.month, Kind: b.kind, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		// "expense" sorts before "income", which is the documented order.
		return rows[i].Kind < rows[j].Kind
	})
	return rows, nil
}
