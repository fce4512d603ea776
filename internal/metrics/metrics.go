// Package metrics holds the Prometheus collectors shared by the sync loop
// and the tool server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rsff"

// Metrics is a private registry plus the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	SyncTotal      *prometheus.CounterVec
	SyncDuration   prometheus.Histogram
	SnapshotRows   *prometheus.GaugeVec
	SnapshotAge    prometheus.Gauge
	ToolCalls      *prometheus.CounterVec
	ToolDuration   *prometheus.HistogramVec
	CooldownHits   prometheus.Counter
	BreakerState   *prometheus.GaugeVec
	lastSync prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SyncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Snapshot refresh attempts by source and result.",
		}, []string{"source", "result"}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time spent pulling and indexing a snapshot.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SnapshotRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_rows",
			Help:      "Rows per tab in the current snapshot.",
		}, []string{"tab"}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_generated_timestamp_seconds",
			Help:      "Unix time the current snapshot was pulled.",
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "MCP tool handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		CooldownHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cooldown_rejections_total",
			Help:      "Tool calls rejected by the per-caller cooldown.",
		}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_sync_timestamp_seconds",
			Help:      "Unix time of the last refresh that replaced the snapshot.",
		}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SyncTotal, m.SyncDuration, m.SnapshotRows, m.SnapshotAge,
		m.ToolCalls, m.ToolDuration, m.CooldownHits, m.BreakerState,
		m.lastSync,
	)
	return m
}

// ObserveSync records one refresh attempt.
func (m *Metrics) ObserveSync(source string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.lastSync.SetToCurrentTime()
	}
	m.SyncTotal.WithLabelValues(source, result).Inc()
	m.SyncDuration.Observe(took.Seconds())
}

// ObserveSnapshot publishes the row counts and pull time of a snapshot.
func (m *Metrics) ObserveSnapshot(rows map[string]int, generated time.Time) {
	if m == nil {
		return
	}
	m.SnapshotRows.Reset()
	for tab, n := range rows {
		m.SnapshotRows.WithLabelValues(tab).Set(float64(n))
	}
	m.SnapshotAge.Set(float64(generated.Unix()))
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool string, took time.Duration, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(took.Seconds())
}

// Cooldown counts a rejected call.
func (m *Metrics) Cooldown() {
	if m == nil {
		return
	}
	m.CooldownHits.Inc()
}

// Breaker records a circuit breaker state change.
func (m *Metrics) Breaker(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
