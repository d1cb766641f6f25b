package contractevents

import (
	"context"
	"encoding/json"
	"fmt"

	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/infrastructure/events"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ListForContract returns a contract's history, newest first. Events of deleted contracts stay readable.
func (s *Service) ListForContract(ctx context.Context, contractID uint) ([]domain.ContractEvent, error) {
	var evs []domain.ContractEvent
	if err := s.DB.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("id DESC").
		Find(&evs).Error; err != nil {
		return nil, err
	}
	if len(evs) == 0 {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&domain.Contract{}).Where("id = ?", contractID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.ErrContractNotFound
		}
	}
	return evs, nil
}

// Record appends an event inside tx; it is rolled back with the mutation it describes.
func Record(tx *gorm.DB, contractID uint, eventType string, data map[string]interface{}) (domain.ContractEvent, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return domain.ContractEvent{}, fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	ev := domain.ContractEvent{
		ContractID: contractID,
		EventType:  eventType,
		EventData:  datatypes.JSON(b),
	}
	if err := tx.Create(&ev).Error; err != nil {
		return domain.ContractEvent{}, fmt.Errorf("record %s event: %w", eventType, err)
	}
	return ev, nil
}

// Publish forwards committed events. Failures are logged; the stored history is the source of truth.
func Publish(ctx context.Context, pub events.Publisher, evs ...domain.ContractEvent) {
	if pub == nil || len(evs) == 0 {
		return
	}
	if err := pub.Publish(ctx, evs...); err != nil {
		log.Warn().Err(err).Uint("contract_id", evs[0].ContractID).Int("events", len(evs)).Msg("contract event publish failed")
	}
}
