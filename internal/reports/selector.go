package reports

import (
	"context"
)

// Request describes one report invocation. It is built per call and never stored.
type Request struct {
	Kind   Kind
	Range  Range
	Format Format
	Months int // trends window; 0 means the default of 12
}

// Payload is a rendered export ready for HTTP delivery.
type Payload struct {
	Bytes    []byte
	Filename string
	MIMEType string
}

// Result carries either structured rows or an export payload, never both.
type Result struct {
	Rows   []SummaryRow
	Export *Payload
}

// Selector is the single entry point translating a report request into rows
// or an export payload.
type Selector struct {
	Agg *Aggregator
}

func NewSelector(agg *Aggregator) *Selector {
	return &Selector{Agg: agg}
}

func (s *Selector) Handle(ctx context.Context, userID string, req Request) (*Result, error) {
	if err := req.Range.Validate(); err != nil {
		return nil, err
	}

	var rows []SummaryRow
	var err error
	switch req.Kind {
	case KindSpending:
		rows, err = s.Agg.SpendingByCategory(ctx, userID, req.Range)
	case KindIncome:
		rows, err = s.Agg.IncomeByCategory(ctx, userID, req.Range)
	case KindTrends:
		rows, err = s.Agg.MonthlyTrends(ctx, userID, req.Months)
	default:
		return nil, ErrInvalidReportKind
	}
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []SummaryRow{}
	}

	filename := req.Kind.String() + "_report"
	switch req.Format {
	case FormatNone:
		return &Result{Rows: rows}, nil
	case FormatCSV:
		p, err := ExportCSV(rows, filename)
		if err != nil {
			return nil, err
		}
		return &Result{Export: p}, nil
	case FormatPDF:
		p, err := ExportPDF(rows, filename)
		if err != nil {
			return nil, err
		}
		return &Result{Export: p}, nil
	default:
		return nil, ErrInvalidExportFormat
	}
}
