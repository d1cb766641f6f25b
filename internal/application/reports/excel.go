package reports

import (
	"fmt"
	"time"

	"energy-marketplace/internal/application/portfolio"
	"energy-marketplace/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	itemsSheet   = "Contracts"
)

type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Generate(p *portfolio.Portfolio, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, p, generatedAt)

	if _, err := file.NewSheet(itemsSheet); err != nil {
		return nil, err
	}
	g.writeItems(file, p)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(file *excelize.File, p *portfolio.Portfolio, generatedAt time.Time) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Portfolio statement")
	set("B1", generatedAt.UTC().Format(time.RFC3339))
	row := 3
	for _, kv := range summaryRows(p.Metrics) {
		set(fmt.Sprintf("A%d", row), kv[0])
		set(fmt.Sprintf("B%d", row), kv[1])
		row++
	}

	row++
	set(fmt.Sprintf("A%d", row), "Energy type")
	set(fmt.Sprintf("B%d", row), "Contracts")
	set(fmt.Sprintf("C%d", row), "Total MWh")
	set(fmt.Sprintf("D%d", row), "Total cost")
	for _, b := range p.Metrics.ByEnergyType {
		row++
		set(fmt.Sprintf("A%d", row), b.EnergyType)
		set(fmt.Sprintf("B%d", row), b.Count)
		set(fmt.Sprintf("C%d", row), b.TotalMWh.StringFixed(2))
		set(fmt.Sprintf("D%d", row), domain.FormatAmount(b.TotalCost))
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 28)
	_ = file.SetColWidth(summarySheet, "B", "D", 18)
}

func (g *ExcelGenerator) writeItems(file *excelize.File, p *portfolio.Portfolio) {
	for i, header := range itemHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(itemsSheet, cell, header)
	}
	for r, it := range p.Items {
		for i, v := range itemRow(it) {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			_ = file.SetCellValue(itemsSheet, cell, v)
		}
	}
	_ = file.SetColWidth(itemsSheet, "A", "A", 10)
	_ = file.SetColWidth(itemsSheet, "B", "C", 20)
	_ = file.SetColWidth(itemsSheet, "D", "I", 16)
}
