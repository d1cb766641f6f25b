package validation

import (
	"strings"
	"unicode/utf8"

	"energy-marketplace/internal/domain"

	"github.com/shopspring/decimal"
)

// Column bounds for contracts: quantity is decimal(12,2), price decimal(10,2).
const (
	MaxEnergyTypeLen = 50
	MaxLocationLen   = 100
	AmountScale      = 2
)

var (
	maxQuantity = decimal.New(1, 10) // exclusive
	maxPrice    = decimal.New(1, 8)  // exclusive
)

// RequiredText checks a trimmed, non-empty string no longer than max runes.
func RequiredText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return domain.Validation("%s must not be empty", field)
	}
	if utf8.RuneCountInString(value) > max {
		return domain.Validation("%s must be at most %d characters", field, max)
	}
	return nil
}

// PositiveAmount checks d > 0, at most two fractional digits, and below limit.
func PositiveAmount(field string, d decimal.Decimal, limit decimal.Decimal) error {
	if !d.IsPositive() {
		return domain.Validation("%s must be greater than 0", field)
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return domain.Validation("%s must have at most %d decimal places", field, AmountScale)
	}
	if d.GreaterThanOrEqual(limit) {
		return domain.Validation("%s is too large", field)
	}
	return nil
}

func EnergyType(v string) error { return RequiredText("energy_type", v, MaxEnergyTypeLen) }

func Location(v string) error { return RequiredText("location", v, MaxLocationLen) }

func Quantity(d decimal.Decimal) error { return PositiveAmount("quantity_mwh", d, maxQuantity) }

func Price(d decimal.Decimal) error { return PositiveAmount("price_per_mwh", d, maxPrice) }
