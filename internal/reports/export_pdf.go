package reports

import (
	"bytes"

	"github.com/phpdave11/gofpdf"

	"github.com/jsilmaro/c6/internal/money"
)

const (
	pdfLineHeight = 8
	pdfBottomY    = 270
)

// ExportPDF serializes rows as a paginated A4 document: a title line, then one
// line per row. The cursor advances a fixed line height per row and a new page
// starts once it passes the bottom margin.
func ExportPDF(rows []SummaryRow, filename string) (*Payload, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(filename, false)
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, filename)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		if pdf.GetY() > pdfBottomY {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 11)
		}
		pdf.Cell(0, pdfLineHeight, r.GroupKey()+": "+money.Format(r.Total))
		pdf.Ln(pdfLineHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return &Payload{
		Bytes:    buf.Bytes(),
		Filename: filename + ".pdf",
		MIMEType: "application/pdf",
	}, nil
}
