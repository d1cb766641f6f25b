package contracts

import (
	"context"
	"errors"
	"time"

	"energy-marketplace/internal/application/contractevents"
	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/infrastructure/events"
	"energy-marketplace/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the contract store. Publisher may be nil.
type Service struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

type CreateContractInput struct {
	EnergyType    string
	QuantityMWh   decimal.Decimal
	PricePerMWh   decimal.Decimal
	DeliveryStart time.Time
	DeliveryEnd   time.Time
	Location      string
}

func (in CreateContractInput) validate() error {
	if err := validation.EnergyType(in.EnergyType); err != nil {
		return err
	}
	if err := validation.Quantity(in.QuantityMWh); err != nil {
		return err
	}
	if err := validation.Price(in.PricePerMWh); err != nil {
		return err
	}
	if err := validation.Location(in.Location); err != nil {
		return err
	}
	if DateOnly(in.DeliveryEnd).Before(DateOnly(in.DeliveryStart)) {
		return domain.ErrInvalidDeliveryDates
	}
	return nil
}

// UpdateContractInput holds a partial update; nil fields are left unchanged.
type UpdateContractInput struct {
	EnergyType    *string
	QuantityMWh   *decimal.Decimal
	PricePerMWh   *decimal.Decimal
	DeliveryStart *time.Time
	DeliveryEnd   *time.Time
	Location      *string
	// Status is accepted only when it equals the current status.
	Status *domain.ContractStatus
}

// apply validates the input against c and mutates c. It returns the changed fields.
func (in UpdateContractInput) apply(c *domain.Contract) (map[string]interface{}, error) {
	if in.Status != nil && *in.Status != c.Status {
		return nil, domain.ErrStatusNotEditable
	}
	changes := map[string]interface{}{}
	if in.EnergyType != nil {
		if err := validation.EnergyType(*in.EnergyType); err != nil {
			return nil, err
		}
		if *in.EnergyType != c.EnergyType {
			c.EnergyType = *in.EnergyType
			changes["energy_type"] = c.EnergyType
		}
	}
	if in.QuantityMWh != nil {
		if err := validation.Quantity(*in.QuantityMWh); err != nil {
			return nil, err
		}
		if !in.QuantityMWh.Equal(c.QuantityMWh) {
			c.QuantityMWh = *in.QuantityMWh
			changes["quantity_mwh"] = c.QuantityMWh.StringFixed(validation.AmountScale)
		}
	}
	if in.PricePerMWh != nil {
		if err := validation.Price(*in.PricePerMWh); err != nil {
			return nil, err
		}
		if !in.PricePerMWh.Equal(c.PricePerMWh) {
			c.PricePerMWh = *in.PricePerMWh
			changes["price_per_mwh"] = c.PricePerMWh.StringFixed(validation.AmountScale)
		}
	}
	if in.Location != nil {
		if err := validation.Location(*in.Location); err != nil {
			return nil, err
		}
		if *in.Location != c.Location {
			c.Location = *in.Location
			changes["location"] = c.Location
		}
	}
	if in.DeliveryStart != nil || in.DeliveryEnd != nil {
		start, end := c.DeliveryWindow()
		if in.DeliveryStart != nil {
			start = DateOnly(*in.DeliveryStart)
		}
		if in.DeliveryEnd != nil {
			end = DateOnly(*in.DeliveryEnd)
		}
		if end.Before(start) {
			return nil, domain.ErrInvalidDeliveryDates
		}
		if in.DeliveryStart != nil && !start.Equal(DateOnly(time.Time(c.DeliveryStart))) {
			c.DeliveryStart = datatypes.Date(start)
			changes["delivery_start"] = start.Format(DateLayout)
		}
		if in.DeliveryEnd != nil && !end.Equal(DateOnly(time.Time(c.DeliveryEnd))) {
			c.DeliveryEnd = datatypes.Date(end)
			changes["delivery_end"] = end.Format(DateLayout)
		}
	}
	return changes, nil
}

// DateLayout is the wire and event format of delivery dates.
const DateLayout = "2006-01-02"

// DateOnly drops the clock part of t, keeping its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) CreateContract(ctx context.Context, in CreateContractInput) (*domain.Contract, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &domain.Contract{
		EnergyType:    in.EnergyType,
		QuantityMWh:   in.QuantityMWh,
		PricePerMWh:   in.PricePerMWh,
		DeliveryStart: datatypes.Date(DateOnly(in.DeliveryStart)),
		DeliveryEnd:   datatypes.Date(DateOnly(in.DeliveryEnd)),
		Location:      in.Location,
		Status:        domain.StatusAvailable,
	}
	var ev domain.ContractEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		var err error
		ev, err = contractevents.Record(tx, c.ID, domain.EventCreated, snapshot(c))
		return err
	})
	if err != nil {
		return nil, err
	}
	contractevents.Publish(ctx, s.Publisher, ev)
	log.Debug().Uint("contract_id", c.ID).Str("energy_type", c.EnergyType).Msg("contract created")
	return c, nil
}

func (s *Service) GetContract(ctx context.Context, id uint) (*domain.Contract, error) {
	var c domain.Contract
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Service) UpdateContract(ctx context.Context, id uint, in UpdateContractInput) (*domain.Contract, error) {
	var (
		c  *domain.Contract
		ev *domain.ContractEvent
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		c, err = LockForUpdate(tx, id)
		if err != nil {
			return err
		}
		changes, err := in.apply(c)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		recorded, err := contractevents.Record(tx, c.ID, domain.EventUpdated, changes)
		if err != nil {
			return err
		}
		ev = &recorded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ev != nil {
		contractevents.Publish(ctx, s.Publisher, *ev)
	}
	return c, nil
}

// DeleteContract removes a contract unless a portfolio item still references it.
func (s *Service) DeleteContract(ctx context.Context, id uint) error {
	var ev domain.ContractEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := LockForUpdate(tx, id)
		if err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&domain.PortfolioItem{}).Where("contract_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrContractInPortfolio
		}
		if err := tx.Delete(c).Error; err != nil {
			return err
		}
		ev, err = contractevents.Record(tx, id, domain.EventDeleted, snapshot(c))
		return err
	})
	if err != nil {
		return err
	}
	contractevents.Publish(ctx, s.Publisher, ev)
	return nil
}

// LockForUpdate loads a contract inside tx, holding a row lock where the database supports one.
func LockForUpdate(tx *gorm.DB, id uint) (*domain.Contract, error) {
	var c domain.Contract
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

func snapshot(c *domain.Contract) map[string]interface{} {
	start, end := c.DeliveryWindow()
	return map[string]interface{}{
		"energy_type":    c.EnergyType,
		"quantity_mwh":   c.QuantityMWh.StringFixed(validation.AmountScale),
		"price_per_mwh":  c.PricePerMWh.StringFixed(validation.AmountScale),
		"delivery_start": start.Format(DateLayout),
		"delivery_end":   end.Format(DateLayout),
		"location":       c.Location,
		"status":         c.Status,
	}
}
