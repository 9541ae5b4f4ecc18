package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsilmaro/c6/internal/transactions"
)

// fakeFeed filters in memory the way the repository filters in SQL.
type fakeFeed struct {
	txs []transactions.Transaction
	err error
}

func (f *fakeFeed) ListBetween(_ context.Context, _ string, typ string, start, end *time.Time) ([]transactions.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []transactions.Transaction
	for _, t := range f.txs {
		if typ != "" && t.Type != typ {
			continue
		}
		if start != nil && t.Date.Before(*start) {
			continue
		}
		if end != nil && t.Date.After(*end) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func tx(typ, category, amount, date string) transactions.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return transactions.Transaction{
		Type:     typ,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     d,
	}
}

func newTestAggregator(feed Feed, now time.Time) *Aggregator {
	agg := NewAggregator(feed)
	agg.Now = func() time.Time { return now }
	return agg
}

func TestSpendingByCategory(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "50", "2024-01-05"),
		tx(transactions.TypeExpense, "food", "30", "2024-01-20"),
		tx(transactions.TypeExpense, "transport", "20", "2024-01-10"),
		tx(transactions.TypeIncome, "salary", "5000", "2024-01-15"),
	}}
	agg := NewAggregator(feed)

	rows, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "food", rows[0].Category)
	assert.True(t, rows[0].Total.Equal(decimal.RequireFromString("80")))
	assert.Equal(t, "transport", rows[1].Category)
	assert.True(t, rows[1].Total.Equal(decimal.RequireFromString("20")))
}

func TestIncomeByCategoryExcludesExpenses(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeIncome, "salary", "5000", "2024-01-15"),
		tx(transactions.TypeIncome, "gift", "100", "2024-01-18"),
		tx(transactions.TypeExpense, "food", "50", "2024-01-05"),
	}}
	agg := NewAggregator(feed)

	rows, err := agg.IncomeByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "salary", rows[0].Category)
	assert.Equal(t, "gift", rows[1].Category)
}

func TestByCategoryOrdering(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "zoo", "10", "2024-01-01"),
		tx(transactions.TypeExpense, "apples", "10", "2024-01-02"),
		tx(transactions.TypeExpense, "rent", "900", "2024-01-03"),
		tx(transactions.TypeExpense, "books", "10", "2024-01-04"),
	}}
	agg := NewAggregator(feed)

	rows, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Non-increasing totals.
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].Total.GreaterThanOrEqual(rows[i].Total))
	}
	// Ties break by category name ascending.
	assert.Equal(t, "rent", rows[0].Category)
	assert.Equal(t, "apples", rows[1].Category)
	assert.Equal(t, "books", rows[2].Category)
	assert.Equal(t, "zoo", rows[3].Category)
}

func TestByCategoryDistinctSpellings(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "Food", "10", "2024-01-01"),
		tx(transactions.TypeExpense, "food", "20", "2024-01-02"),
	}}
	agg := NewAggregator(feed)

	rows, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestByCategoryExactDecimalSums(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "0.10", "2024-01-01"),
		tx(transactions.TypeExpense, "food", "0.20", "2024-01-02"),
	}}
	agg := NewAggregator(feed)

	rows, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0.30", rows[0].Total.StringFixed(2))
}

func TestByCategoryEmptyFeed(t *testing.T) {
	agg := NewAggregator(&fakeFeed{})

	rows, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestByCategoryFeedErrorPropagates(t *testing.T) {
	feedErr := errors.New("connection reset")
	agg := NewAggregator(&fakeFeed{err: feedErr})

	_, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	assert.ErrorIs(t, err, feedErr)
}

func TestByCategoryRangeFilters(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "50", "2024-01-05"),
		tx(transactions.TypeExpense, "food", "30", "2024-03-20"),
	}}
	agg := NewAggregator(feed)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	rows, err := agg.SpendingByCategory(context.Background(), "u1", Range{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "50.00", rows[0].Total.StringFixed(2))
}

func TestAggregatorIdempotent(t *testing.T) {
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "50", "2024-01-05"),
		tx(transactions.TypeExpense, "transport", "20", "2024-01-10"),
	}}
	agg := NewAggregator(feed)

	first, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	second, err := agg.SpendingByCategory(context.Background(), "u1", Range{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMonthlyTrends(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "100", "2024-05-10"),
		tx(transactions.TypeExpense, "rent", "900", "2024-05-01"),
		tx(transactions.TypeIncome, "salary", "3000", "2024-05-25"),
		tx(transactions.TypeExpense, "food", "80", "2024-06-02"),
	}}
	agg := newTestAggregator(feed, now)

	rows, err := agg.MonthlyTrends(context.Background(), "u1", 12)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "2024-05", rows[0].Month)
	assert.Equal(t, transactions.TypeExpense, rows[0].Kind)
	assert.Equal(t, "1000.00", rows[0].Total.StringFixed(2))

	assert.Equal(t, "2024-05", rows[1].Month)
	assert.Equal(t, transactions.TypeIncome, rows[1].Kind)

	assert.Equal(t, "2024-06", rows[2].Month)
	assert.Equal(t, transactions.TypeExpense, rows[2].Kind)
}

func TestMonthlyTrendsWindow(t *testing.T) {
	now := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	// 13 consecutive months of expenses; the oldest must fall outside
	// a 12 month window ending at "now".
	var txs []transactions.Transaction
	month := time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		txs = append(txs, tx(transactions.TypeExpense, "food", "10", month.Format("2006-01-02")))
		month = month.AddDate(0, 1, 0)
	}
	agg := newTestAggregator(&fakeFeed{txs: txs}, now)

	rows, err := agg.MonthlyTrends(context.Background(), "u1", 12)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.Equal(t, "2024-01", rows[0].Month)
	assert.Equal(t, "2024-12", rows[len(rows)-1].Month)

	// Months are non-decreasing.
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1].Month, rows[i].Month)
	}
}

func TestMonthlyTrendsDefaultWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	feed := &fakeFeed{txs: []transactions.Transaction{
		tx(transactions.TypeExpense, "food", "10", "2023-06-15"),
		tx(transactions.TypeExpense, "food", "10", "2023-07-15"),
	}}
	agg := newTestAggregator(feed, now)

	// monthsBack <= 0 falls back to 12: July 2023 is in, June 2023 is out.
	rows, err := agg.MonthlyTrends(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2023-07", rows[0].Month)
}

func TestRangeValidate(t *testing.T) {
	a := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, Range{}.Validate())
	assert.NoError(t, Range{Start: &b, End: &a}.Validate())
	assert.NoError(t, Range{Start: &a}.Validate())
	assert.ErrorIs(t, Range{Start: &a, End: &b}.Validate(), ErrInvalidDateRange)
}
