package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/helixir/job-board-service/internal/config"
	"github.com/helixir/job-board-service/internal/domain"
	"github.com/helixir/job-board-service/internal/observability"
	"github.com/helixir/job-board-service/internal/search"
)

const (
	testResource = "job-posts"
	testIndex    = "job-posts"
)

// fakeReader serves queued messages and then blocks until the context ends.
type fakeReader struct {
	messages  []kafka.Message
	fetchErr  error
	commitErr error
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		return msg, nil
	}
	if r.fetchErr != nil {
		return kafka.Message{}, r.fetchErr
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	if r.commitErr != nil {
		return r.commitErr
	}
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

// mockWriter implements DocumentWriter.
type mockWriter struct {
	indexFn  func(ctx context.Context, index, id string, doc domain.JobPostDTO) domain.Result[search.WriteResult]
	deleteFn func(ctx context.Context, index, id string) domain.Result[search.WriteResult]

	indexed []domain.JobPostDTO
	deleted []string
}

func (m *mockWriter) IndexDocument(ctx context.Context, index, id string, doc domain.JobPostDTO) domain.Result[search.WriteResult] {
	m.indexed = append(m.indexed, doc)
	if m.indexFn != nil {
		return m.indexFn(ctx, index, id, doc)
	}
	return domain.Ok(search.ResultCreated)
}

func (m *mockWriter) DeleteDocument(ctx context.Context, index, id string) domain.Result[search.WriteResult] {
	m.deleted = append(m.deleted, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id)
	}
	return domain.Ok(search.ResultDeleted)
}

func testDTO(id string) domain.JobPostDTO {
	return domain.JobPostDTO{
		ID:          id,
		UserID:      "u1",
		Title:       "Eng",
		Description: "d",
		Salary:      60000,
		WorkModel:   domain.WorkModelHybrid,
	}
}

func jsonMessage(t *testing.T, topic, key string, value any, offset int64) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Key: []byte(key), Value: raw, Offset: offset}
}

// runUntilDrained runs the consumer until it blocks on an empty reader.
func runUntilDrained(t *testing.T, c *Consumer) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	return c.Run(ctx)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{"job-posts.created", "job-posts.updated", "job-posts.deleted"}, Topics(testResource))
}

func TestNewKafkaReader(t *testing.T) {
	r := NewKafkaReader(config.KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "indexer"}, testResource)
	defer r.Close()

	cfg := r.Config()
	assert.Equal(t, "indexer", cfg.GroupID)
	assert.Equal(t, Topics(testResource), cfg.GroupTopics)
	assert.Zero(t, cfg.CommitInterval)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(config.IndexerConfig{RateLimit: 0, Burst: 5}))

	l := NewLimiter(config.IndexerConfig{RateLimit: 20, Burst: 0})
	require.NotNil(t, l)
	assert.Equal(t, rate.Limit(20), l.Limit())
	assert.Equal(t, 1, l.Burst())
}

func TestConsumer_Run(t *testing.T) {
	t.Run("applies every lifecycle event and commits each", func(t *testing.T) {
		reader := &fakeReader{messages: []kafka.Message{
			jsonMessage(t, "job-posts.created", "p1", testDTO("p1"), 1),
			jsonMessage(t, "job-posts.updated", "p1", testDTO("p1"), 2),
			jsonMessage(t, "job-posts.deleted", "p1", domain.DeletedPayload{ID: "p1"}, 3),
		}}
		writer := &mockWriter{}
		c := NewConsumer(reader, writer, testResource, testIndex, nil, zerolog.Nop(), nil)

		require.NoError(t, runUntilDrained(t, c))

		assert.Equal(t, []domain.JobPostDTO{testDTO("p1"), testDTO("p1")}, writer.indexed)
		assert.Equal(t, []string{"p1"}, writer.deleted)
		require.Len(t, reader.committed, 3)
		assert.Equal(t, int64(3), reader.committed[2].Offset)
	})

	t.Run("poison messages are committed without writes", func(t *testing.T) {
		m := observability.NewMetrics("test", prometheus.NewRegistry())
		reader := &fakeReader{messages: []kafka.Message{
			{Topic: "job-posts.created", Value: []byte("not json"), Offset: 1},
			jsonMessage(t, "job-posts.updated", "", domain.JobPostDTO{Title: "no id"}, 2),
			{Topic: "job-posts.deleted", Value: []byte(`{}`), Offset: 3},
			{Topic: "job-posts.archived", Value: []byte(`{"id":"p1"}`), Offset: 4},
		}}
		writer := &mockWriter{}
		c := NewConsumer(reader, writer, testResource, testIndex, nil, zerolog.Nop(), m)

		require.NoError(t, runUntilDrained(t, c))

		assert.Empty(t, writer.indexed)
		assert.Empty(t, writer.deleted)
		assert.Len(t, reader.committed, 4)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexerMessages.WithLabelValues("job-posts.created", observability.OutcomePoison)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexerMessages.WithLabelValues("job-posts.archived", observability.OutcomePoison)))
	})

	t.Run("gateway failure stops without committing", func(t *testing.T) {
		m := observability.NewMetrics("test", prometheus.NewRegistry())
		reader := &fakeReader{messages: []kafka.Message{
			jsonMessage(t, "job-posts.created", "p1", testDTO("p1"), 1),
			jsonMessage(t, "job-posts.created", "p2", testDTO("p2"), 2),
		}}
		writer := &mockWriter{indexFn: func(_ context.Context, _, id string, _ domain.JobPostDTO) domain.Result[search.WriteResult] {
			if id == "p2" {
				return domain.Fail[search.WriteResult](domain.NewSearchTransportError("index", testIndex, errors.New("unavailable")))
			}
			return domain.Ok(search.ResultCreated)
		}}
		c := NewConsumer(reader, writer, testResource, testIndex, nil, zerolog.Nop(), m)

		err := runUntilDrained(t, c)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSearchTransport)
		assert.Contains(t, err.Error(), "p2")
		require.Len(t, reader.committed, 1)
		assert.Equal(t, int64(1), reader.committed[0].Offset)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexerMessages.WithLabelValues("job-posts.created", observability.OutcomeFailure)))
	})

	t.Run("delete failure stops without committing", func(t *testing.T) {
		reader := &fakeReader{messages: []kafka.Message{
			jsonMessage(t, "job-posts.deleted", "p1", domain.DeletedPayload{ID: "p1"}, 7),
		}}
		writer := &mockWriter{deleteFn: func(context.Context, string, string) domain.Result[search.WriteResult] {
			return domain.Fail[search.WriteResult](errors.New("boom"))
		}}
		c := NewConsumer(reader, writer, testResource, testIndex, nil, zerolog.Nop(), nil)

		require.Error(t, runUntilDrained(t, c))
		assert.Empty(t, reader.committed)
	})

	t.Run("not found deletes are committed", func(t *testing.T) {
		reader := &fakeReader{messages: []kafka.Message{
			jsonMessage(t, "job-posts.deleted", "p1", domain.DeletedPayload{ID: "p1"}, 1),
		}}
		writer := &mockWriter{deleteFn: func(context.Context, string, string) domain.Result[search.WriteResult] {
			return domain.Ok(search.ResultNotFound)
		}}
		c := NewConsumer(reader, writer, testResource, testIndex, nil, zerolog.Nop(), nil)

		require.NoError(t, runUntilDrained(t, c))
		assert.Len(t, reader.committed, 1)
	})

	t.Run("fetch error is returned", func(t *testing.T) {
		reader := &fakeReader{fetchErr: errors.New("broker gone")}
		c := NewConsumer(reader, &mockWriter{}, testResource, testIndex, nil, zerolog.Nop(), nil)

		err := runUntilDrained(t, c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker gone")
	})

	t.Run("closed reader ends the loop", func(t *testing.T) {
		reader := &fakeReader{fetchErr: io.EOF}
		c := NewConsumer(reader, &mockWriter{}, testResource, testIndex, nil, zerolog.Nop(), nil)

		assert.NoError(t, runUntilDrained(t, c))
	})

	t.Run("commit error is returned", func(t *testing.T) {
		reader := &fakeReader{
			messages:  []kafka.Message{jsonMessage(t, "job-posts.created", "p1", testDTO("p1"), 1)},
			commitErr: errors.New("rebalance in progress"),
		}
		c := NewConsumer(reader, &mockWriter{}, testResource, testIndex, nil, zerolog.Nop(), nil)

		err := runUntilDrained(t, c)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rebalance in progress")
	})

	t.Run("canceled context returns nil", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewConsumer(&fakeReader{}, &mockWriter{}, testResource, testIndex, nil, zerolog.Nop(), nil)

		assert.NoError(t, c.Run(ctx))
	})
}

func TestConsumer_Handle(t *testing.T) {
	t.Run("uses the configured index and document id", func(t *testing.T) {
		var gotIndex, gotID string
		writer := &mockWriter{indexFn: func(_ context.Context, index, id string, _ domain.JobPostDTO) domain.Result[search.WriteResult] {
			gotIndex, gotID = index, id
			return domain.Ok(search.ResultUpdated)
		}}
		c := NewConsumer(&fakeReader{}, writer, testResource, "jobs-v2", nil, zerolog.Nop(), nil)

		err := c.Handle(context.Background(), jsonMessage(t, "job-posts.updated", "p9", testDTO("p9"), 1))

		require.NoError(t, err)
		assert.Equal(t, "jobs-v2", gotIndex)
		assert.Equal(t, "p9", gotID)
	})

	t.Run("rate limiter wait honours cancellation", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		require.True(t, limiter.Allow())
		writer := &mockWriter{}
		c := NewConsumer(&fakeReader{}, writer, testResource, testIndex, limiter, zerolog.Nop(), nil)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := c.Handle(ctx, jsonMessage(t, "job-posts.created", "p1", testDTO("p1"), 1))

		require.Error(t, err)
		assert.Empty(t, writer.indexed)
	})

	t.Run("topics follow the resource", func(t *testing.T) {
		writer := &mockWriter{}
		c := NewConsumer(&fakeReader{}, writer, "listings", testIndex, nil, zerolog.Nop(), nil)

		require.NoError(t, c.Handle(context.Background(), jsonMessage(t, "job-posts.created", "p1", testDTO("p1"), 1)))
		assert.Empty(t, writer.indexed)

		require.NoError(t, c.Handle(context.Background(), jsonMessage(t, "listings.created", "p1", testDTO("p1"), 2)))
		assert.Len(t, writer.indexed, 1)
	})
}

func TestConsumer_Close(t *testing.T) {
	reader := &fakeReader{}
	c := NewConsumer(reader, &mockWriter{}, testResource, testIndex, nil, zerolog.Nop(), nil)

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
