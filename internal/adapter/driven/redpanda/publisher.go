// Package redpanda publishes build status transitions to a Kafka-compatible
// broker using franz-go.
package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.EventPublisher = (*Publisher)(nil)
	_ driven.EventPublisher = (*LogPublisher)(nil)
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher produces one record per status change, keyed by build configuration ID.
type Publisher struct {
	client *kgo.Client
	topic  string
	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a Publisher for the given seed brokers and topic.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker address is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Publisher{client: client, topic: topic}, nil
}

// PublishStatusChange sends the event synchronously.
func (p *Publisher) PublishStatusChange(ctx context.Context, event model.BuildStatusEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	record, err := newRecord(p.topic, event)
	if err != nil {
		return err
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce status change for %s: %w", event.BuildTypeID, err)
	}

	return nil
}

// Close flushes and closes the underlying client. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.client.Close()
	return nil
}

func newRecord(topic string, event model.BuildStatusEvent) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode status change: %w", err)
	}

	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.BuildTypeID),
		Value: value,
	}, nil
}

// LogPublisher writes status changes to the structured log. It is used when
// no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger uses slog.Default().
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// PublishStatusChange logs the event.
func (p *LogPublisher) PublishStatusChange(ctx context.Context, event model.BuildStatusEvent) error {
	p.logger.InfoContext(ctx, "build status changed",
		"build_type_id", event.BuildTypeID,
		"project", event.ProjectName,
		"build", event.BuildName,
		"previous", string(event.Previous),
		"current", string(event.Current),
		"state", string(event.State),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error {
	return nil
}
