package reports

import (
	"bytes"
	"fmt"
	"time"

	"energy-marketplace/internal/application/portfolio"
	"energy-marketplace/internal/domain"

	"github.com/jung-kurt/gofpdf"
)

var itemWidths = []float64{18, 30, 40, 26, 26, 30, 28, 34, 32}

// PDFGenerator uses the core Helvetica font; text is translated to cp1252.
type PDFGenerator struct {
	fontName string
}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{fontName: "Helvetica"}
}

func (g *PDFGenerator) Generate(p *portfolio.Portfolio, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Portfolio statement", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format(time.RFC3339), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	for _, kv := range summaryRows(p.Metrics) {
		pdf.CellFormat(70, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, kv[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	if len(p.Metrics.ByEnergyType) > 0 {
		widths := []float64{60, 30, 40, 40}
		drawRow(pdf, g.fontName, []string{"Energy type", "Contracts", "Total MWh", "Total cost"}, widths, true)
		for _, b := range p.Metrics.ByEnergyType {
			drawRow(pdf, g.fontName, []string{
				tr(b.EnergyType),
				fmt.Sprintf("%d", b.Count),
				b.TotalMWh.StringFixed(2),
				domain.FormatAmount(b.TotalCost),
			}, widths, false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Contracts", "", 1, "L", false, 0, "")
	if len(p.Items) == 0 {
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, "The portfolio is empty.", "", 1, "L", false, 0, "")
	} else {
		drawRow(pdf, g.fontName, itemHeaders, itemWidths, true)
		for _, it := range p.Items {
			cols := itemRow(it)
			cols[1], cols[2] = tr(cols[1]), tr(cols[2])
			drawRow(pdf, g.fontName, cols, itemWidths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawRow right-aligns every column after the third.
func drawRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
