package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each test uses its own registry so metrics never collide.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	assert.NotNil(t, m.JobPostMutations)
	assert.NotNil(t, m.EventsPublished)
	assert.NotNil(t, m.EventsFailed)
	assert.NotNil(t, m.SearchRequests)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.IndexOperations)
	assert.NotNil(t, m.IndexerMessages)
}

func TestNewMetrics_RegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("job_board", reg)
	m.RecordMutation("create", OutcomeSuccess)

	count, err := testutil.GatherAndCount(reg, "job_board_job_post_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordMutation(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordMutation("create", OutcomeSuccess)
	m.RecordMutation("create", OutcomeSuccess)
	m.RecordMutation("delete", OutcomeFailure)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.JobPostMutations.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobPostMutations.WithLabelValues("delete", OutcomeFailure)))
}

func TestRecordEvents(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordEventPublished("job-posts.created")
	m.RecordEventFailed("job-posts.deleted")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("job-posts.created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsFailed.WithLabelValues("job-posts.deleted")))
}

func TestRecordSearch(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordSearch("job-posts", OutcomeSuccess, 25*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchRequests.WithLabelValues("job-posts", OutcomeSuccess)))

	histCount, err := getHistogramSampleCount(m.SearchDuration.WithLabelValues("job-posts").(prometheus.Histogram))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), histCount)
}

func TestRecordIndexOperation(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordIndexOperation("index", "created")
	m.RecordIndexOperation("delete", "not_found")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexOperations.WithLabelValues("index", "created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexOperations.WithLabelValues("delete", "not_found")))
}

func TestRecordIndexerMessage(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordIndexerMessage("job-posts.updated", OutcomePoison)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexerMessages.WithLabelValues("job-posts.updated", OutcomePoison)))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordMutation("create", OutcomeSuccess)
		m.RecordEventPublished("t")
		m.RecordEventFailed("t")
		m.RecordSearch("i", OutcomeFailure, time.Second)
		m.RecordIndexOperation("index", "noop")
		m.RecordIndexerMessage("t", OutcomeSuccess)
	})
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}
