// Package kafka publishes stream events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/gwstream/pkg/eventstream"
	"github.com/papercomputeco/gwstream/pkg/logger"
)

const (
	// DefaultTopic is used when no topic is configured.
	DefaultTopic = "gwstream.events"

	HeaderEventType     = "event_type"
	HeaderSchemaVersion = "schema_version"
	HeaderRequestID     = "request_id"
)

// ErrNoBrokers is returned when a publisher is configured without brokers.
var ErrNoBrokers = errors.New("kafka publisher requires at least one broker")

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures a Publisher.
type Config struct {
	Brokers []string
	Topic   string

	// BatchTimeout caps how long a message waits for a batch to fill.
	BatchTimeout time.Duration

	Logger *slog.Logger
}

// Publisher writes each event as one Kafka message. Messages are keyed by
// request id so all events of one stream land on the same partition, in order.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Publisher backed by a kafka-go Writer.
func NewPublisher(c Config) (*Publisher, error) {
	brokers := make([]string, 0, len(c.Brokers))
	for _, b := range c.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	batchTimeout := c.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 10 * time.Millisecond
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}

	return newPublisher(w, topic, c.Logger), nil
}

func newPublisher(w messageWriter, topic string, log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		writer: w,
		topic:  topic,
		logger: log,
	}
}

// Publish writes event to the topic.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.StreamEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	msg, err := toMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s to kafka topic %s: %w", event.EventType, p.topic, err)
	}

	p.logger.Debug("published stream event",
		"topic", p.topic,
		"event_type", event.EventType,
		"event_id", event.EventID,
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(event *eventstream.StreamEvent) (kafkago.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshaling stream event: %w", err)
	}

	key := event.Source.RequestID
	if key == "" {
		key = event.EventID
	}

	return kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderSchemaVersion, Value: []byte(strconv.Itoa(event.SchemaVersion))},
			{Key: HeaderRequestID, Value: []byte(event.Source.RequestID)},
		},
	}, nil
}
