package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jsilmaro/c6/internal/money"
)

// ExportCSV serializes rows as a comma-delimited table with a Category,Amount
// header and one line per summary row.
func ExportCSV(rows []SummaryRow, filename string) (*Payload, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"Category", "Amount"})
	for _, r := range rows {
		records = append(records, []string{r.GroupKey(), money.Format(r.Total)})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}

	return &Payload{
		Bytes:    buf.Bytes(),
		Filename: filename + ".csv",
		MIMEType: "text/csv",
	}, nil
}
