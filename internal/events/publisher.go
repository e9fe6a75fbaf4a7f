package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnhub_backend/internal/config"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload interface{}) error
	Close() error
}

// WatermillPublisher wraps any watermill publisher with the event envelope.
type WatermillPublisher struct {
	publisher message.Publisher
	logger    *zap.Logger
	topic     string
}

func NewWatermillPublisher(publisher message.Publisher, topic string, logger *zap.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, logger: logger, topic: topic}
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*WatermillPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, NewZapAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return NewWatermillPublisher(pub, topic, logger), nil
}

// NewMemoryPublisher publishes onto an in-process channel. The returned
// GoChannel can also be used to subscribe.
func NewMemoryPublisher(topic string, logger *zap.Logger) (*WatermillPublisher, *gochannel.GoChannel) {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, NewZapAdapter(logger))
	return NewWatermillPublisher(ch, topic, logger), ch
}

func (p *WatermillPublisher) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := message.NewMessage(event.ID, body)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.Debug("Published event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(eventType)),
		zap.String("topic", p.topic))
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// Disabled drops every event.
type Disabled struct{}

func (Disabled) Publish(context.Context, EventType, interface{}) error { return nil }
func (Disabled) Close() error                                          { return nil }

// NewPublisher builds the publisher selected by events.publisher.
func NewPublisher(cfg config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	switch cfg.Publisher {
	case "kafka":
		return NewKafkaPublisher(cfg.Brokers(), cfg.Topic, logger)
	case "memory", "":
		pub, _ := NewMemoryPublisher(cfg.Topic, logger)
		return pub, nil
	case "disabled", "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown events publisher %q", cfg.Publisher)
	}
}

// Decode unmarshals a message produced by WatermillPublisher. The payload is
// left as raw JSON.
func Decode(msg *message.Message) (Event, json.RawMessage, error) {
	var envelope struct {
		Event
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return Event{}, nil, err
	}
	return envelope.Event, envelope.Payload, nil
}

var _ watermill.LoggerAdapter = (*ZapAdapter)(nil)
