// Package kafka publishes validation events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
)

// ErrNoBrokers is returned when the publisher is configured without brokers.
var ErrNoBrokers = errors.New("kafka: at least one broker is required")

// ErrNoTopic is returned when the publisher is configured without a topic.
var ErrNoTopic = errors.New("kafka: topic is required")

// Config configures the Kafka publisher.
type Config struct {
	// Brokers are the bootstrap broker addresses.
	Brokers []string

	// Topic receives every validation event.
	Topic string

	// WriteTimeout bounds a single write. Zero uses the client default.
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// messageWriter is the part of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes events as JSON values keyed by resource, so every event of
// one resource lands on the same partition in order.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Kafka publisher.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if strings.TrimSpace(c.Topic) == "" {
		return nil, ErrNoTopic
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           c.WriteTimeout,
	}

	return newPublisher(w, c.Topic, c.Logger), nil
}

func newPublisher(w messageWriter, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{writer: w, topic: topic, logger: logger}
}

// Publish writes one event.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.ValidationEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Resource),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(fmt.Sprint(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", p.topic, err)
	}

	p.logger.Debug("published validation event",
		"topic", p.topic,
		"event_id", event.EventID,
		"resource", event.Resource,
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
