package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/record-crew/recordai/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector("recordai", prometheus.NewRegistry(), zap.NewNop())
}

func TestRecordHTTPRequest_BucketsStatus(t *testing.T) {
	c := newTestCollector(t)

	c.RecordHTTPRequest("POST", "/api/stt", 200, 120*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/stt", 422, 80*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/stt", 502, 5*time.Second)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/api/stt", "2xx")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/api/stt", "4xx")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/api/stt", "5xx")))
}

func TestObserveStage_SuccessAndFailureKinds(t *testing.T) {
	c := newTestCollector(t)

	c.ObserveStage("transcribe", time.Second, nil)
	c.ObserveStage("transcribe", time.Second,
		types.NewError(types.ErrValidation, "too big"))
	c.ObserveStage("image", time.Second,
		types.NewError(types.ErrUnsupportedCapability, "b64 only"))
	c.ObserveStage("organize", time.Second, errors.New("plain"))

	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.stageOperationsTotal.WithLabelValues("transcribe", "success", "none")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.stageOperationsTotal.WithLabelValues("transcribe", "failure", string(types.ErrValidation))))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.stageOperationsTotal.WithLabelValues("image", "failure", string(types.ErrUnsupportedCapability))))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.stageOperationsTotal.WithLabelValues("organize", "failure", "unknown")))
}

func TestRecordRetry_CountsPerProvider(t *testing.T) {
	c := newTestCollector(t)

	hook := c.RecordRetry("openai-stt")
	require.NotNil(t, hook)
	hook(1, errors.New("503"), 500*time.Millisecond)
	hook(2, errors.New("503"), time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		c.providerRetriesTotal.WithLabelValues("openai-stt")))
	assert.Equal(t, float64(0), testutil.ToFloat64(
		c.providerRetriesTotal.WithLabelValues("openai-chat")))
}

func TestNewCollector_DuplicateNamespaceIsolatedByRegistry(t *testing.T) {
	// Two collectors with the same namespace must not collide as long as
	// they register on separate registries.
	a := NewCollector("recordai", prometheus.NewRegistry(), zap.NewNop())
	b := NewCollector("recordai", prometheus.NewRegistry(), zap.NewNop())
	assert.NotNil(t, a)
	assert.NotNil(t, b)
}
