package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contract event types, written in the same transaction as the mutation they describe.
const (
	EventCreated  = "CREATED"
	EventUpdated  = "UPDATED"
	EventDeleted  = "DELETED"
	EventReserved = "RESERVED"
	EventReleased = "RELEASED"
)

// ContractEvent is an append-only history entry for a contract. It outlives the contract.
// ID orders events; EventID is the identifier published downstream.
type ContractEvent struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EventID    uuid.UUID      `gorm:"column:event_id;type:uuid;not null;uniqueIndex" json:"event_id"`
	ContractID uint           `gorm:"column:contract_id;not null;index" json:"contract_id"`
	EventType  string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData  datatypes.JSON `gorm:"column:event_data;not null" json:"event_data"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ContractEvent) TableName() string {
	return "contract_events"
}

func (e *ContractEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
