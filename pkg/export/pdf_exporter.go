package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfTableWidth = 190.0

// PDFExporter renders datasets into a tabular PDF. Cells wrap, so long
// question and answer text stays readable.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := pdfTableWidth / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	left, _, _, _ := pdf.GetMargins()
	for _, row := range data.Rows {
		height := e.rowHeight(pdf, data.Headers, row, colWidth)
		x, y := pdf.GetXY()
		for _, header := range data.Headers {
			pdf.Rect(x, y, colWidth, height, "D")
			pdf.SetXY(x, y)
			pdf.MultiCell(colWidth, 5, row[header], "", "L", false)
			x += colWidth
		}
		pdf.SetXY(left, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) rowHeight(pdf *gofpdf.Fpdf, headers []string, row map[string]string, colWidth float64) float64 {
	lines := 1
	for _, header := range headers {
		n := len(pdf.SplitText(row[header], colWidth))
		if n > lines {
			lines = n
		}
	}
	return float64(lines) * 5
}
