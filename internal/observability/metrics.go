// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Workflow metrics
	WorkflowRunsTotal *prometheus.CounterVec
	WorkflowDuration  *prometheus.HistogramVec
	PairsEvaluated    *prometheus.CounterVec
	SummaryRowsStored prometheus.Counter
	ExportsTotal      *prometheus.CounterVec

	// Import metrics
	RowsImported *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pair_performance_lab"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Workflow metrics
		WorkflowRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total number of workflow runs by status",
		}, []string{"workflow", "status"}),
		WorkflowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "duration_seconds",
			Help:      "Workflow execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"workflow"}),
		PairsEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "pairs_evaluated_total",
			Help:      "Total number of trade pairs evaluated by side",
		}, []string{"workflow", "side"}),
		SummaryRowsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "summary_rows_stored_total",
			Help:      "Total number of aggregation rows persisted",
		}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "runs_total",
			Help:      "Total number of exports by status",
		}, []string{"status"}),

		// Import metrics
		RowsImported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of rows imported by table",
		}, []string{"table"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of failed store calls",
		}, []string{"store", "operation"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful workflow run",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordWorkflowRun records a finished workflow run.
func (m *Metrics) RecordWorkflowRun(workflow, status string, durationSeconds float64) {
	m.WorkflowRunsTotal.WithLabelValues(workflow, status).Inc()
	m.WorkflowDuration.WithLabelValues(workflow).Observe(durationSeconds)
}

// RecordPairsEvaluated adds n evaluated pairs for one side of a workflow.
func (m *Metrics) RecordPairsEvaluated(workflow, side string, n int) {
	m.PairsEvaluated.WithLabelValues(workflow, side).Add(float64(n))
}

// RecordExport records an export attempt.
func (m *Metrics) RecordExport(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ExportsTotal.WithLabelValues(status).Inc()
}

// RecordImport adds n imported rows for table.
func (m *Metrics) RecordImport(table string, n int) {
	m.RowsImported.WithLabelValues(table).Add(float64(n))
}

// RecordDBQuery records store call metrics.
func (m *Metrics) RecordDBQuery(store, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(store, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(store, operation).Inc()
	}
}
