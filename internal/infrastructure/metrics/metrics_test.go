package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveStage(t *testing.T) {
	m := New()

	m.ObserveStage("transcribe", "completed", 2*time.Second)
	m.ObserveStage("transcribe", "completed", time.Second)
	m.ObserveStage("transcribe", "failed", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("transcribe", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("transcribe", "failed")))
}

func TestMetrics_ObserveCleanup_IgnoresZero(t *testing.T) {
	m := New()

	m.ObserveCleanup("segments", 0)
	m.ObserveCleanup("segments", 3)
	m.ObserveCleanup("segments", 0)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.cleanupDeleted.WithLabelValues("segments")))
}

func TestMetrics_ActiveRuns(t *testing.T) {
	m := New()

	m.RunStarted()
	m.RunStarted()
	m.RunFinished()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRuns))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveFallback("parse_error")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `recap_moment_fallback_total{reason="parse_error"} 1`)
}
