// Package indexer keeps the search index in step with the job post event
// stream.
//
// Messages are applied one at a time and committed only after the index
// write succeeded, so delivery is at-least-once. Index and delete are
// idempotent, which makes redelivery safe. Messages that can never succeed
// (unknown topic, undecodable payload) are logged and committed so they do
// not block their partition.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"golang.org/x/time/rate"

	"github.com/helixir/job-board-service/internal/config"
	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/observability"
	"github.com/helixir/job-board-service/internal/search"
)

// MessageReader is the broker consumer. *kafka.Reader satisfies it.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ MessageReader = (*kafka.Reader)(nil)

// DocumentWriter applies index mutations.
// *search.Gateway[domain.JobPostDTO] satisfies it.
type DocumentWriter interface {
	IndexDocument(ctx context.Context, index, id string, doc domain.JobPostDTO) domain.Result[search.WriteResult]
	DeleteDocument(ctx context.Context, index, id string) domain.Result[search.WriteResult]
}

var _ DocumentWriter = (*search.Gateway[domain.JobPostDTO])(nil)

// ErrPoisonMessage marks a message that cannot be applied however often it is retried.
var ErrPoisonMessage = errors.New("poison message")

// Topics returns the lifecycle topics of resource.
func Topics(resource string) []string {
	return []string{
		domain.Topic(resource, domain.EventKindCreated),
		domain.Topic(resource, domain.EventKindUpdated),
		domain.Topic(resource, domain.EventKindDeleted),
	}
}

// NewKafkaReader creates a consumer group reader over the lifecycle topics
// of resource. Offsets are committed explicitly.
func NewKafkaReader(cfg config.KafkaConfig, resource string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    Topics(resource),
		CommitInterval: 0,
	})
}

// NewLimiter returns the engine write limiter for cfg, or nil when writes
// are unlimited.
func NewLimiter(cfg config.IndexerConfig) *rate.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
}

// Consumer applies lifecycle events to the search index.
type Consumer struct {
	reader  MessageReader
	writer  DocumentWriter
	index   string
	kinds   map[string]string
	limiter *rate.Limiter
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewConsumer creates a consumer that reads the lifecycle topics of resource
// and writes to index. limiter and metrics may be nil.
func NewConsumer(reader MessageReader, writer DocumentWriter, resource, index string, limiter *rate.Limiter, logger zerolog.Logger, metrics *observability.Metrics) *Consumer {
	kinds := make(map[string]string, 3)
	for _, kind := range []string{domain.EventKindCreated, domain.EventKindUpdated, domain.EventKindDeleted} {
		kinds[domain.Topic(resource, kind)] = kind
	}

	return &Consumer{
		reader:  reader,
		writer:  writer,
		index:   index,
		kinds:   kinds,
		limiter: limiter,
		logger:  logger.With().Str("component", "index_synchronizer").Str("index", index).Logger(),
		metrics: metrics,
	}
}

// Run consumes until ctx is canceled, which yields nil. A failed index
// write stops the loop with an error and leaves the message uncommitted.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().Msg("index synchronizer started")
	defer c.logger.Info().Msg("index synchronizer stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.Handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
	}
}

// Handle applies one message. A nil return means the message may be
// committed, including when it was discarded as poison.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	logger := observability.WithPartitionContext(
		observability.WithEventContext(c.logger, msg.Topic, string(msg.Key)),
		msg.Partition, msg.Offset,
	)

	err := c.apply(ctx, msg)
	switch {
	case err == nil:
		c.metrics.RecordIndexerMessage(msg.Topic, observability.OutcomeSuccess)
		return nil
	case errors.Is(err, ErrPoisonMessage):
		logger.Error().Err(err).Msg("discarding message")
		c.metrics.RecordIndexerMessage(msg.Topic, observability.OutcomePoison)
		return nil
	default:
		logger.Error().Err(err).Msg("failed to apply message")
		c.metrics.RecordIndexerMessage(msg.Topic, observability.OutcomeFailure)
		return err
	}
}

func (c *Consumer) apply(ctx context.Context, msg kafka.Message) error {
	kind, ok := c.kinds[msg.Topic]
	if !ok {
		return fmt.Errorf("%w: unknown topic %q", ErrPoisonMessage, msg.Topic)
	}

	switch kind {
	case domain.EventKindDeleted:
		var payload domain.DeletedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			return fmt.Errorf("%w: decode deleted payload: %v", ErrPoisonMessage, err)
		}
		if payload.ID == "" {
			return fmt.Errorf("%w: deleted payload has no id", ErrPoisonMessage)
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
		if res := c.writer.DeleteDocument(ctx, c.index, payload.ID); !res.OK() {
			return fmt.Errorf("delete job post %s: %w", payload.ID, res.Err())
		}

	default:
		var dto domain.JobPostDTO
		if err := json.Unmarshal(msg.Value, &dto); err != nil {
			return fmt.Errorf("%w: decode job post: %v", ErrPoisonMessage, err)
		}
		if dto.ID == "" {
			return fmt.Errorf("%w: job post has no id", ErrPoisonMessage)
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
		if res := c.writer.IndexDocument(ctx, c.index, dto.ID, dto); !res.OK() {
			return fmt.Errorf("index job post %s: %w", dto.ID, res.Err())
		}
	}
	return nil
}

func (c *Consumer) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}
	return nil
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
