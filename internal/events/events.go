package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/local_directory/internal/logging"
)

const (
	UserRegistered  = "user_registered"
	BusinessCreated = "business_created"
	BusinessUpdated = "business_updated"
	BusinessDeleted = "business_deleted"
	ReviewCreated   = "review_created"
	ReviewUpdated   = "review_updated"
	ReviewDeleted   = "review_deleted"
	CategoryCreated = "category_created"
)

const publishTimeout = 5 * time.Second

type Event struct {
	Type       string    `json:"type"`
	ResourceID uint      `json:"resourceId"`
	ActorID    uint      `json:"actorId"`
	At         time.Time `json:"at"`
	Data       any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// Kind is the resource an event type belongs to: "business" for
// business_created, "review" for review_deleted.
func Kind(eventType string) string {
	kind, _, _ := strings.Cut(eventType, "_")
	return kind
}

// MessageKey identifies the resource, not the change, so all events of one
// resource share a key.
func MessageKey(ev Event) string {
	return Kind(ev.Type) + "-" + strconv.FormatUint(uint64(ev.ResourceID), 10)
}

// NewKafkaPublisher returns a publisher keyed by resource kind and id, so events of
// one resource land on one partition in order.
func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(MessageKey(ev)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Emit publishes without failing the caller. Errors are logged.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed",
			"type", ev.Type, "resource_id", ev.ResourceID, "error", err)
	}
}
