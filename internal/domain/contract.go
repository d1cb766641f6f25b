package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContractStatus is the lifecycle state of a Contract.
type ContractStatus string

const (
	StatusAvailable ContractStatus = "Available"
	StatusReserved  ContractStatus = "Reserved"
	// StatusSold is part of the vocabulary only; no operation moves a contract into it.
	StatusSold ContractStatus = "Sold"
)

// Valid reports whether s is one of the known statuses.
func (s ContractStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// ParseStatus converts a raw value into a ContractStatus.
func ParseStatus(raw string) (ContractStatus, error) {
	s := ContractStatus(raw)
	if !s.Valid() {
		return "", Validation("status must be Available, Reserved, or Sold")
	}
	return s, nil
}

// Contract is a tradable quantity of energy delivered over a date range at a fixed price.
type Contract struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EnergyType    string          `gorm:"column:energy_type;type:varchar(50);not null;index" json:"energy_type"`
	QuantityMWh   decimal.Decimal `gorm:"column:quantity_mwh;type:decimal(12,2);not null" json:"quantity_mwh"`
	PricePerMWh   decimal.Decimal `gorm:"column:price_per_mwh;type:decimal(10,2);not null" json:"price_per_mwh"`
	DeliveryStart datatypes.Date  `gorm:"column:delivery_start;not null;index" json:"delivery_start"`
	DeliveryEnd   datatypes.Date  `gorm:"column:delivery_end;not null" json:"delivery_end"`
	Location      string          `gorm:"column:location;type:varchar(100);not null" json:"location"`
	// LocationKey is Location lowercased in Go; location filters match against it.
	LocationKey   string          `gorm:"column:location_key;type:varchar(400);not null;default:'';index" json:"-"`
	Status        ContractStatus  `gorm:"column:status;type:varchar(20);not null;default:'Available';index" json:"status"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

func (c *Contract) BeforeSave(*gorm.DB) error {
	c.LocationKey = strings.ToLower(c.Location)
	return nil
}

// Cost is quantity times price.
func (c Contract) Cost() decimal.Decimal {
	return c.QuantityMWh.Mul(c.PricePerMWh)
}

// WeightedAverage is cost over capacity rounded half-to-even to cents. Zero capacity yields zero.
func WeightedAverage(cost, capacity decimal.Decimal) decimal.Decimal {
	if capacity.IsZero() {
		return decimal.Zero
	}
	return cost.Div(capacity).RoundBank(2)
}

// FormatAmount renders d with at least two fractional digits and never drops a significant one.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return s
	}
	return d.StringFixed(2)
}

// DeliveryWindow returns the delivery dates as time values.
func (c Contract) DeliveryWindow() (start, end time.Time) {
	return time.Time(c.DeliveryStart), time.Time(c.DeliveryEnd)
}
