package contracts

import (
	"context"
	"errors"
	"testing"
	"time"

	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/infrastructure/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupContractsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func solarInput() CreateContractInput {
	return CreateContractInput{
		EnergyType:    "Solar",
		QuantityMWh:   dec("100"),
		PricePerMWh:   dec("50"),
		DeliveryStart: date("2024-01-01"),
		DeliveryEnd:   date("2024-12-31"),
		Location:      "California",
	}
}

func countContracts(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&domain.Contract{}).Count(&n).Error)
	return n
}

func TestCreateContract(t *testing.T) {
	svc, db := setupContractsTest(t)
	ctx := context.Background()

	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, domain.StatusAvailable, c.Status)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	got, err := svc.GetContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Solar", got.EnergyType)
	assert.True(t, got.QuantityMWh.Equal(dec("100")))
	start, end := got.DeliveryWindow()
	assert.Equal(t, "2024-01-01", start.Format(DateLayout))
	assert.Equal(t, "2024-12-31", end.Format(DateLayout))

	var events []domain.ContractEvent
	require.NoError(t, db.Where("contract_id = ?", c.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCreated, events[0].EventType)
}

func TestCreateContract_SameDayDelivery(t *testing.T) {
	svc, _ := setupContractsTest(t)
	in := solarInput()
	in.DeliveryEnd = in.DeliveryStart
	_, err := svc.CreateContract(context.Background(), in)
	assert.NoError(t, err)
}

func TestCreateContract_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateContractInput)
	}{
		{"end before start", func(in *CreateContractInput) {
			in.DeliveryStart, in.DeliveryEnd = date("2024-12-31"), date("2024-01-01")
		}},
		{"zero quantity", func(in *CreateContractInput) { in.QuantityMWh = decimal.Zero }},
		{"negative price", func(in *CreateContractInput) { in.PricePerMWh = dec("-1") }},
		{"three decimals", func(in *CreateContractInput) { in.PricePerMWh = dec("10.123") }},
		{"blank energy type", func(in *CreateContractInput) { in.EnergyType = "  " }},
		{"blank location", func(in *CreateContractInput) { in.Location = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := setupContractsTest(t)
			in := solarInput()
			tt.mutate(&in)
			_, err := svc.CreateContract(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Zero(t, countContracts(t, db))
		})
	}
}

func TestCreateContract_ExactDecimals(t *testing.T) {
	svc, _ := setupContractsTest(t)
	ctx := context.Background()
	in := solarInput()
	in.QuantityMWh = dec("1234567890.12")
	in.PricePerMWh = dec("45.50")

	c, err := svc.CreateContract(ctx, in)
	require.NoError(t, err)
	got, err := svc.GetContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234567890.12", got.QuantityMWh.StringFixed(2))
	assert.Equal(t, "45.50", got.PricePerMWh.StringFixed(2))
}

func TestGetContract_NotFound(t *testing.T) {
	svc, _ := setupContractsTest(t)
	_, err := svc.GetContract(context.Background(), 42)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "Contract not found", err.Error())
}

func TestUpdateContract_PartialFields(t *testing.T) {
	svc, db := setupContractsTest(t)
	ctx := context.Background()
	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)

	price := dec("55.25")
	updated, err := svc.UpdateContract(ctx, c.ID, UpdateContractInput{PricePerMWh: &price})
	require.NoError(t, err)
	assert.True(t, updated.PricePerMWh.Equal(price))
	assert.Equal(t, "Solar", updated.EnergyType)
	assert.True(t, updated.QuantityMWh.Equal(dec("100")))
	assert.False(t, updated.UpdatedAt.Before(c.UpdatedAt))

	var n int64
	require.NoError(t, db.Model(&domain.ContractEvent{}).Where("contract_id = ? AND event_type = ?", c.ID, domain.EventUpdated).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUpdateContract_NoChangesRecordsNothing(t *testing.T) {
	svc, db := setupContractsTest(t)
	ctx := context.Background()
	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)

	same := "Solar"
	_, err = svc.UpdateContract(ctx, c.ID, UpdateContractInput{EnergyType: &same})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&domain.ContractEvent{}).Where("event_type = ?", domain.EventUpdated).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateContract_DatePair(t *testing.T) {
	svc, _ := setupContractsTest(t)
	ctx := context.Background()
	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)

	// only the end moves, and lands before the stored start
	end := date("2023-06-01")
	_, err = svc.UpdateContract(ctx, c.ID, UpdateContractInput{DeliveryEnd: &end})
	require.ErrorIs(t, err, domain.ErrInvalidDeliveryDates)

	got, err := svc.GetContract(ctx, c.ID)
	require.NoError(t, err)
	_, stored := got.DeliveryWindow()
	assert.Equal(t, "2024-12-31", stored.Format(DateLayout))

	// both move together into a valid pair
	start, end := date("2023-01-01"), date("2023-06-01")
	updated, err := svc.UpdateContract(ctx, c.ID, UpdateContractInput{DeliveryStart: &start, DeliveryEnd: &end})
	require.NoError(t, err)
	s, e := updated.DeliveryWindow()
	assert.Equal(t, "2023-01-01", s.Format(DateLayout))
	assert.Equal(t, "2023-06-01", e.Format(DateLayout))
}

func TestUpdateContract_Status(t *testing.T) {
	svc, _ := setupContractsTest(t)
	ctx := context.Background()
	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)

	reserved := domain.StatusReserved
	_, err = svc.UpdateContract(ctx, c.ID, UpdateContractInput{Status: &reserved})
	require.ErrorIs(t, err, domain.ErrStatusNotEditable)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	available := domain.StatusAvailable
	loc := "Nevada"
	updated, err := svc.UpdateContract(ctx, c.ID, UpdateContractInput{Status: &available, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, updated.Status)
	assert.Equal(t, "Nevada", updated.Location)
}

func TestUpdateContract_NotFound(t *testing.T) {
	svc, _ := setupContractsTest(t)
	loc := "Texas"
	_, err := svc.UpdateContract(context.Background(), 7, UpdateContractInput{Location: &loc})
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
}

func TestDeleteContract(t *testing.T) {
	svc, db := setupContractsTest(t)
	ctx := context.Background()
	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteContract(ctx, c.ID))
	assert.Zero(t, countContracts(t, db))

	err = svc.DeleteContract(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrContractNotFound)

	// history outlives the contract
	var n int64
	require.NoError(t, db.Model(&domain.ContractEvent{}).Where("contract_id = ?", c.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestDeleteContract_GuardedByPortfolio(t *testing.T) {
	svc, db := setupContractsTest(t)
	ctx := context.Background()
	c, err := svc.CreateContract(ctx, solarInput())
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.PortfolioItem{ContractID: c.ID}).Error)

	err = svc.DeleteContract(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrContractInPortfolio)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, int64(1), countContracts(t, db))
}
