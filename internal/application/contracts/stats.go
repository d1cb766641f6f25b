package contracts

import (
	"context"

	"energy-marketplace/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EnergyTypeCount struct {
	EnergyType string `json:"energy_type"`
	Count      int64  `json:"count"`
}

// MarketStats summarizes the contracts currently open for reservation.
type MarketStats struct {
	AvailableContracts int64
	TotalCapacityMWh   decimal.Decimal
	AvgPricePerMWh     decimal.Decimal // capacity-weighted
	ByEnergyType       []EnergyTypeCount
	Locations          []string
}

func (s *Service) MarketStats(ctx context.Context) (*MarketStats, error) {
	stats := &MarketStats{ByEnergyType: []EnergyTypeCount{}, Locations: []string{}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		available := func() *gorm.DB {
			return tx.Model(&domain.Contract{}).Where("status = ?", domain.StatusAvailable)
		}

		var rows []domain.Contract
		if err := available().Select("quantity_mwh", "price_per_mwh").Find(&rows).Error; err != nil {
			return err
		}
		capacity, cost := decimal.Zero, decimal.Zero
		for _, c := range rows {
			capacity = capacity.Add(c.QuantityMWh)
			cost = cost.Add(c.Cost())
		}
		stats.AvailableContracts = int64(len(rows))
		stats.TotalCapacityMWh = capacity
		stats.AvgPricePerMWh = domain.WeightedAverage(cost, capacity)

		if err := available().
			Select("energy_type, COUNT(*) AS count").
			Group("energy_type").
			Order("energy_type").
			Scan(&stats.ByEnergyType).Error; err != nil {
			return err
		}
		return available().Distinct("location").Order("location").Pluck("location", &stats.Locations).Error
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
