package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	reportTitle = "Haycarb PLC - FuelTracker Report"
	pdfRowH     = 7.0
)

func writePDF(w io.Writer, t Table, now time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(reportTitle, true)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	usable := pageW - left - right
	widths := columnWidths(t, usable)

	exported := now.Format("2006-01-02 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(usable/2, 10, "Exported on "+exported, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable/2, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(31, 78, 121)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Header {
			pdf.CellFormat(widths[i], pdfRowH, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(t.Title), "", 1, "C", false, 0, "")
	if t.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, tr(t.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, row := range t.Rows {
		if pdf.GetY()+pdfRowH > pageH-bottom-15 {
			pdf.AddPage()
			header()
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		if i%2 == 0 {
			pdf.SetFillColor(242, 242, 242)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for col, v := range row {
			align := "L"
			if t.numeric(col) {
				align = "R"
			}
			pdf.CellFormat(widths[col], pdfRowH, tr(v), "1", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}

// columnWidths масштабирует Widths таблицы под ширину страницы.
func columnWidths(t Table, usable float64) []float64 {
	out := make([]float64, len(t.Header))
	var sum float64
	for i := range out {
		if i < len(t.Widths) {
			out[i] = t.Widths[i]
		} else {
			out[i] = 30
		}
		sum += out[i]
	}
	for i := range out {
		out[i] = out[i] * usable / sum
	}
	return out
}
