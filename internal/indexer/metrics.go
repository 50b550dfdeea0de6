package indexer

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus instruments updated after each run.
type Metrics struct {
	filesByTier  *prometheus.CounterVec
	filesByType  *prometheus.CounterVec
	filesRemoved prometheus.Counter
	tokens       prometheus.Counter
	edges        prometheus.Counter
	diagnostics  prometheus.Counter
	runDuration  *prometheus.HistogramVec
	lastSuccess  prometheus.Gauge
}

// NewMetrics registers the indexer metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: tier (1-3)
		filesByTier: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "files_indexed_total",
			Help:      "Files written to the index by tier",
		}, []string{"tier"}),
		// Labels: type (story, skill, config, ...)
		filesByType: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "files_indexed_by_type_total",
			Help:      "Files written to the index by node type",
		}, []string{"type"}),
		filesRemoved: f.NewCounter(prometheus.CounterOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "files_removed_total",
			Help:      "Nodes deleted because their file vanished",
		}),
		tokens: f.NewCounter(prometheus.CounterOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "tokens_total",
			Help:      "Estimated tokens across indexed files",
		}),
		edges: f.NewCounter(prometheus.CounterOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "edges_total",
			Help:      "Edges written to the index",
		}),
		diagnostics: f.NewCounter(prometheus.CounterOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "diagnostics_total",
			Help:      "Soft extraction failures",
		}),
		// Labels: mode (full, incremental)
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "run_duration_seconds",
			Help:      "Wall time of an indexing run",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"mode"}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "docgen",
			Subsystem: "index",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last committed run",
		}),
	}
}

// observe records a committed run. A nil *Metrics is a no-op.
func (m *Metrics) observe(s *Stats) {
	if m == nil {
		return
	}
	for t, n := range s.ByTier {
		m.filesByTier.WithLabelValues(strconv.Itoa(int(t))).Add(float64(n))
	}
	for nt, n := range s.ByType {
		m.filesByType.WithLabelValues(string(nt)).Add(float64(n))
	}
	m.filesRemoved.Add(float64(s.Removed))
	m.tokens.Add(float64(s.Tokens))
	m.edges.Add(float64(s.Edges))
	m.diagnostics.Add(float64(len(s.Diagnostics)))
	mode := "full"
	if s.Incremental {
		mode = "incremental"
	}
	m.runDuration.WithLabelValues(mode).Observe(s.Duration.Seconds())
	m.lastSuccess.SetToCurrentTime()
}
