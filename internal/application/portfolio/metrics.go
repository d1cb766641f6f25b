package portfolio

import (
	"sort"

	"energy-marketplace/internal/domain"

	"github.com/shopspring/decimal"
)

// EnergyTypeBreakdown aggregates the items of one energy type.
type EnergyTypeBreakdown struct {
	EnergyType string
	Count      int
	TotalMWh   decimal.Decimal
	TotalCost  decimal.Decimal
}

type Metrics struct {
	TotalContracts   int
	TotalCapacityMWh decimal.Decimal
	TotalCost        decimal.Decimal
	WeightedAvgPrice decimal.Decimal
	ByEnergyType     []EnergyTypeBreakdown
}

// ComputeMetrics aggregates items over their contracts. Costs stay exact; the weighted average follows
// domain.WeightedAverage. Breakdown is ordered by energy type.
func ComputeMetrics(items []domain.PortfolioItem) Metrics {
	m := Metrics{
		TotalContracts:   len(items),
		TotalCapacityMWh: decimal.Zero,
		TotalCost:        decimal.Zero,
		WeightedAvgPrice: decimal.Zero,
		ByEnergyType:     []EnergyTypeBreakdown{},
	}
	byType := map[string]*EnergyTypeBreakdown{}
	for _, it := range items {
		c := it.Contract
		cost := c.Cost()
		m.TotalCapacityMWh = m.TotalCapacityMWh.Add(c.QuantityMWh)
		m.TotalCost = m.TotalCost.Add(cost)

		b, ok := byType[c.EnergyType]
		if !ok {
			b = &EnergyTypeBreakdown{EnergyType: c.EnergyType, TotalMWh: decimal.Zero, TotalCost: decimal.Zero}
			byType[c.EnergyType] = b
		}
		b.Count++
		b.TotalMWh = b.TotalMWh.Add(c.QuantityMWh)
		b.TotalCost = b.TotalCost.Add(cost)
	}
	m.WeightedAvgPrice = domain.WeightedAverage(m.TotalCost, m.TotalCapacityMWh)
	for _, b := range byType {
		m.ByEnergyType = append(m.ByEnergyType, *b)
	}
	sort.Slice(m.ByEnergyType, func(i, j int) bool {
		return m.ByEnergyType[i].EnergyType < m.ByEnergyType[j].EnergyType
	})
	return m
}
