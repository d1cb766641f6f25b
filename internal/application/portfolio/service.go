package portfolio

import (
	"context"
	"errors"

	"energy-marketplace/internal/application/contractevents"
	"energy-marketplace/internal/application/contracts"
	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/infrastructure/events"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns portfolio membership and the Available/Reserved transitions it drives. Publisher may be nil.
type Service struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

// Portfolio is every item with its contract, plus the aggregate over them.
type Portfolio struct {
	Items   []domain.PortfolioItem
	Metrics Metrics
}

// AddToPortfolio reserves an Available contract and records its membership.
func (s *Service) AddToPortfolio(ctx context.Context, contractID uint) (*domain.PortfolioItem, error) {
	var (
		item domain.PortfolioItem
		ev   domain.ContractEvent
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := contracts.LockForUpdate(tx, contractID)
		if err != nil {
			return err
		}
		if c.Status != domain.StatusAvailable {
			return domain.NotAvailable(c.Status)
		}
		var existing int64
		if err := tx.Model(&domain.PortfolioItem{}).Where("contract_id = ?", contractID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrAlreadyInPortfolio
		}

		if err := tx.Model(c).Update("status", domain.StatusReserved).Error; err != nil {
			return err
		}
		c.Status = domain.StatusReserved
		item = domain.PortfolioItem{ContractID: contractID}
		if err := tx.Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrAlreadyInPortfolio
			}
			return err
		}
		item.Contract = *c

		ev, err = contractevents.Record(tx, contractID, domain.EventReserved, map[string]interface{}{
			"portfolio_item_id": item.ID,
			"status":            domain.StatusReserved,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	contractevents.Publish(ctx, s.Publisher, ev)
	log.Info().Uint("contract_id", contractID).Uint("portfolio_item_id", item.ID).Msg("contract reserved")
	return &item, nil
}

// RemoveFromPortfolio drops the membership and releases the contract. A contract that no longer exists is tolerated.
func (s *Service) RemoveFromPortfolio(ctx context.Context, contractID uint) error {
	var ev domain.ContractEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.PortfolioItem
		if err := tx.Where("contract_id = ?", contractID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotInPortfolio
			}
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.Contract{}).Where("id = ?", contractID).Update("status", domain.StatusAvailable)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Warn().Uint("contract_id", contractID).Msg("portfolio item referenced a missing contract")
		}

		var err error
		ev, err = contractevents.Record(tx, contractID, domain.EventReleased, map[string]interface{}{
			"portfolio_item_id": item.ID,
			"status":            domain.StatusAvailable,
		})
		return err
	})
	if err != nil {
		return err
	}
	contractevents.Publish(ctx, s.Publisher, ev)
	log.Info().Uint("contract_id", contractID).Msg("contract released")
	return nil
}

// ListItems returns the portfolio items joined with their contracts, oldest first.
func (s *Service) ListItems(ctx context.Context) ([]domain.PortfolioItem, error) {
	items := []domain.PortfolioItem{}
	if err := s.DB.WithContext(ctx).
		Joins("Contract").
		Order("portfolio_items.added_at, portfolio_items.id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetPortfolio(ctx context.Context) (*Portfolio, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &Portfolio{Items: items, Metrics: ComputeMetrics(items)}, nil
}
