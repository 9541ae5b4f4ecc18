package reports

import (
	"errors"
	"strings"
)

var (
	ErrInvalidReportKind   = errors.New("invalid report kind")
	ErrInvalidExportFormat = errors.New("invalid export format")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

// Kind selects one of the supported aggregation modes.
type Kind int

const (
	KindSpending Kind = iota
	KindIncome
	KindTrends
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spending":
		return KindSpending, nil
	case "income":
		return KindIncome, nil
	case "trends":
		return KindTrends, nil
	default:
		return 0, ErrInvalidReportKind
	}
}

func (k Kind) String() string {
	switch k {
	case KindSpending:
		return "spending"
	case KindIncome:
		return "income"
	case KindTrends:
		return "trends"
	default:
		return "unknown"
	}
}

// Format selects a serialization target for summary rows.
type Format int

const (
	FormatNone Format = iota
	FormatCSV
	FormatPDF
)

// ParseFormat maps the export query value to a Format; empty means no export.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatNone, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return 0, ErrInvalidExportFormat
	}
}
