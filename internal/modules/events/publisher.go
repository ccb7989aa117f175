// README: Quote lifecycle events published to Kafka for downstream booking and analytics consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Type string

const (
	TypeQuoteIssued   Type = "quote.issued"
	TypeQuoteConsumed Type = "quote.consumed"
)

type Event struct {
	Type         Type      `json:"type"`
	QuoteID      string    `json:"quoteId"`
	VehicleClass string    `json:"vehicleClass,omitempty"`
	Options      int       `json:"options,omitempty"`
	Total        float64   `json:"total,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Publisher must not block the request path.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{log: log}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				p.log.Error().Err(err).Int("messages", len(msgs)).Msg("quote events: kafka write failed")
			}
		},
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) {
	msg, err := message(ev)
	if err != nil {
		p.log.Error().Err(err).Str("quote_id", ev.QuoteID).Msg("quote events: encode failed")
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error().Err(err).Str("quote_id", ev.QuoteID).Msg("quote events: enqueue failed")
	}
}

func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("quote events: close writer: %w", err)
	}
	return nil
}

// message keys by quote id so every event of one quote lands on the same partition.
func message(ev Event) (kafka.Message, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.QuoteID),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}, nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
func (NopPublisher) Close() error                   { return nil }
