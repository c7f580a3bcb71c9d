package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "recap"

	stageLabel    = "stage"
	outcomeLabel  = "outcome"
	reasonLabel   = "reason"
	categoryLabel = "category"
	codeLabel     = "code"
)

// Metrics holds the Prometheus collectors of the pipeline and its HTTP API.
type Metrics struct {
	registry       *prometheus.Registry
	stageTotal     *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	fallbackTotal  *prometheus.CounterVec
	cleanupDeleted *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	activeRuns     prometheus.Gauge
}

// New creates and registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	stageTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_total",
		Help:      "Pipeline stage invocations by outcome",
	}, []string{stageLabel, outcomeLabel})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Wall time spent in a pipeline stage",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{stageLabel})
	fallbackTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moment_fallback_total",
		Help:      "Moment analyses that used the heuristic generator",
	}, []string{reasonLabel})
	cleanupDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_files_deleted_total",
		Help:      "Files removed by job cleanup",
	}, []string{categoryLabel})
	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by status code",
	}, []string{codeLabel})
	activeRuns := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_runs",
		Help:      "Queued pipeline runs currently held by a worker",
	})

	registry.MustRegister(
		stageTotal,
		stageDuration,
		fallbackTotal,
		cleanupDeleted,
		requestsTotal,
		activeRuns,
	)

	return &Metrics{
		registry:       registry,
		stageTotal:     stageTotal,
		stageDuration:  stageDuration,
		fallbackTotal:  fallbackTotal,
		cleanupDeleted: cleanupDeleted,
		requestsTotal:  requestsTotal,
		activeRuns:     activeRuns,
	}
}

// ObserveStage records one finished stage. outcome is "completed", "failed"
// or "rejected" for prerequisite and validation errors.
func (m *Metrics) ObserveStage(stage, outcome string, elapsed time.Duration) {
	m.stageTotal.With(prometheus.Labels{stageLabel: stage, outcomeLabel: outcome}).Inc()
	m.stageDuration.With(prometheus.Labels{stageLabel: stage}).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFallback(reason string) {
	m.fallbackTotal.With(prometheus.Labels{reasonLabel: reason}).Inc()
}

func (m *Metrics) ObserveCleanup(category string, deleted int) {
	if deleted <= 0 {
		return
	}
	m.cleanupDeleted.With(prometheus.Labels{categoryLabel: category}).Add(float64(deleted))
}

func (m *Metrics) IncRequests(code string) {
	m.requestsTotal.With(prometheus.Labels{codeLabel: code}).Inc()
}

func (m *Metrics) RunStarted() {
	m.activeRuns.Inc()
}

func (m *Metrics) RunFinished() {
	m.activeRuns.Dec()
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
