package reports

import (
	"fmt"
	"strings"
	"time"

	"energy-marketplace/internal/application/portfolio"
	"energy-marketplace/internal/domain"
)

// Format selects the statement renderer.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts xlsx or pdf, case-insensitively. Empty means xlsx.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", domain.Validation("format must be xlsx or pdf")
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename is the attachment name for a statement generated at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("portfolio-%s.%s", t.UTC().Format("20060102-150405"), f)
}

// Generator renders a portfolio statement.
type Generator interface {
	Generate(p *portfolio.Portfolio, generatedAt time.Time) ([]byte, error)
}

// For returns the generator for f.
func For(f Format) Generator {
	if f == FormatPDF {
		return NewPDFGenerator()
	}
	return NewExcelGenerator()
}

var itemHeaders = []string{"Contract", "Energy type", "Location", "Delivery start", "Delivery end", "Quantity (MWh)", "Price (/MWh)", "Cost", "Added"}

// itemRow renders one item as statement cells. Quantity and price are fixed to cents, cost is exact.
func itemRow(it domain.PortfolioItem) []string {
	c := it.Contract
	start, end := c.DeliveryWindow()
	return []string{
		fmt.Sprintf("#%d", c.ID),
		c.EnergyType,
		c.Location,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		c.QuantityMWh.StringFixed(2),
		c.PricePerMWh.StringFixed(2),
		domain.FormatAmount(c.Cost()),
		it.AddedAt.UTC().Format("2006-01-02 15:04"),
	}
}

func summaryRows(m portfolio.Metrics) [][2]string {
	return [][2]string{
		{"Contracts", fmt.Sprintf("%d", m.TotalContracts)},
		{"Total capacity (MWh)", m.TotalCapacityMWh.StringFixed(2)},
		{"Total cost", domain.FormatAmount(m.TotalCost)},
		{"Weighted avg price (/MWh)", m.WeightedAvgPrice.StringFixed(2)},
	}
}
