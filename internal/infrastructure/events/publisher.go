package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"energy-marketplace/internal/domain"

	"github.com/segmentio/kafka-go"
)

// Publisher hands committed contract events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, events ...domain.ContractEvent) error
	Close() error
}

// Nop drops events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ...domain.ContractEvent) error { return nil }

func (Nop) Close() error { return nil }

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed by contract id so a contract's events stay ordered.
type KafkaPublisher struct {
	Writer MessageWriter
}

// NewKafkaPublisher builds a publisher backed by a kafka.Writer.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

// Envelope is the wire format of a published event.
type Envelope struct {
	EventID    string          `json:"event_id"`
	ContractID uint            `json:"contract_id"`
	EventType  string          `json:"event_type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...domain.ContractEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(Envelope{
			EventID:    e.EventID.String(),
			ContractID: e.ContractID,
			EventType:  e.EventType,
			Data:       json.RawMessage(e.EventData),
			OccurredAt: e.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal contract event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatUint(uint64(e.ContractID), 10)),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.EventType)},
			},
		})
	}
	if err := p.Writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish contract events: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.Writer.Close()
}
