package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// EventBoostTriggered is the event type of a BoostEvent.
const EventBoostTriggered = "listing.boost_triggered"

// BoostEvent announces that a listing was auto-boosted.
type BoostEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ItemID     string    `json:"item_id"`
	BoostType  string    `json:"boost_type"`
	Reason     string    `json:"reason"`
	Cost       string    `json:"cost"`
	Momentum   int       `json:"momentum_score"`
	CTRCode    string    `json:"ctr_code"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBoostEvent builds the event for a boost decision.
func NewBoostEvent(d *models.BoostDecision, now time.Time) BoostEvent {
	return BoostEvent{
		ID:         uuid.NewString(),
		Type:       EventBoostTriggered,
		ItemID:     d.ItemID,
		BoostType:  string(d.BoostType),
		Reason:     d.Reason,
		Cost:       d.Cost.StringFixed(2),
		Momentum:   d.MomentumScore,
		CTRCode:    d.Metrics.CTRCode,
		OccurredAt: now.UTC(),
	}
}

// Publisher delivers boost events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, events []BoostEvent) error
	Close() error
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger *utils.Logger
}

func NewLogPublisher(logger *utils.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, events []BoostEvent) error {
	for _, e := range events {
		p.logger.Info("[notify] %s %s → %s (cost ฿%s): %s", e.Type, e.ItemID, e.BoostType, e.Cost, e.Reason)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// KafkaPublisher writes events to a Kafka topic keyed by item id, so every
// event for a listing lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		topic = EventBoostTriggered
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, events []BoostEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs, err := encodeMessages(events)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: write %d boost events: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeMessages(events []BoostEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("kafka: encode event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.ItemID),
			Value: payload,
			Time:  e.OccurredAt,
		})
	}
	return msgs, nil
}

// BoostEvents collects an event for every boosted assessment, in input order.
func BoostEvents(assessments []models.Assessment, now time.Time) []BoostEvent {
	var events []BoostEvent
	for _, a := range assessments {
		if a.Boost != nil {
			events = append(events, NewBoostEvent(a.Boost, now))
		}
	}
	return events
}
