// Package events publishes job post lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/helixir/job-board-service/internal/config"
	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/observability"
)

// Message header keys set on every lifecycle event.
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// MessageWriter is the broker transport. *kafka.Writer satisfies it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ MessageWriter = (*kafka.Writer)(nil)

// Producer publishes created/updated/deleted events for a resource.
// Topics are "<resource>.<kind>" and every message is keyed by the entity id,
// so all events for one job post land on the same partition.
type Producer struct {
	writer   MessageWriter
	resource string
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewProducer creates a producer for resource writing through writer.
// metrics may be nil.
func NewProducer(writer MessageWriter, resource string, logger zerolog.Logger, metrics *observability.Metrics) *Producer {
	return &Producer{
		writer:   writer,
		resource: resource,
		logger:   logger.With().Str("component", "event_producer").Logger(),
		metrics:  metrics,
	}
}

// NewKafkaWriter builds a writer for cfg. The writer has no fixed topic;
// each message names its own.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           parseRequiredAcks(cfg.RequiredAcks),
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		MaxAttempts:            cfg.MaxAttempts,
		AllowAutoTopicCreation: true,
	}
}

func parseRequiredAcks(s string) kafka.RequiredAcks {
	switch strings.ToLower(s) {
	case config.AcksNone:
		return kafka.RequireNone
	case config.AcksOne:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

// EmitCreated publishes dto on "<resource>.created".
func (p *Producer) EmitCreated(ctx context.Context, dto domain.JobPostDTO) error {
	return p.emit(ctx, domain.EventKindCreated, dto.ID, dto)
}

// EmitUpdated publishes dto on "<resource>.updated".
func (p *Producer) EmitUpdated(ctx context.Context, dto domain.JobPostDTO) error {
	return p.emit(ctx, domain.EventKindUpdated, dto.ID, dto)
}

// EmitDeleted publishes {"id": id} on "<resource>.deleted".
func (p *Producer) EmitDeleted(ctx context.Context, id string) error {
	return p.emit(ctx, domain.EventKindDeleted, id, domain.DeletedPayload{ID: id})
}

// emit sends one message and waits for the transport to accept it.
func (p *Producer) emit(ctx context.Context, kind, key string, value any) error {
	topic := domain.Topic(p.resource, kind)
	logger := observability.WithEventContext(p.logger, topic, key)

	body, err := json.Marshal(value)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode event")
		p.metrics.RecordEventFailed(topic)
		return domain.NewEventEmissionError(topic, key, fmt.Errorf("marshal value: %w", err))
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(kind)},
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
		},
		Time: time.Now().UTC(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("failed to publish event")
		p.metrics.RecordEventFailed(topic)
		return domain.NewEventEmissionError(topic, key, err)
	}

	p.metrics.RecordEventPublished(topic)
	logger.Debug().Msg("event published")
	return nil
}

// Close flushes pending writes and closes the transport.
func (p *Producer) Close() error {
	p.logger.Info().Msg("closing event producer")
	return p.writer.Close()
}
