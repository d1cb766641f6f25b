package validation

import (
	"errors"
	"strings"
	"testing"

	"energy-marketplace/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuantityAndPrice(t *testing.T) {
	assert.NoError(t, Quantity(decimal.RequireFromString("500.00")))
	assert.NoError(t, Price(decimal.RequireFromString("45.5")))
	assert.NoError(t, Price(decimal.RequireFromString("45.500")))

	for _, raw := range []string{"0", "-1", "10.001", "10000000000"} {
		err := Quantity(decimal.RequireFromString(raw))
		assert.True(t, errors.Is(err, domain.ErrValidation), raw)
	}
	assert.Error(t, Price(decimal.RequireFromString("100000000")))
}

func TestRequiredText(t *testing.T) {
	assert.NoError(t, EnergyType("Solar"))
	assert.Error(t, EnergyType("   "))
	assert.Error(t, EnergyType(strings.Repeat("x", 51)))
	assert.NoError(t, Location(strings.Repeat("é", 100)))
	assert.EqualError(t, Location(""), "location must not be empty")
}
