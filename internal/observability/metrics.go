package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// object engine and its refresh loop.
type Metrics struct {
	RecordsNormalized *prometheus.CounterVec // labels: kind
	RecordsMalformed  *prometheus.CounterVec // labels: kind
	RefreshFailures   prometheus.Counter
	RefreshDuration   prometheus.Histogram
	StaleRefreshes    prometheus.Counter

	DatasetSize      prometheus.Gauge
	SelectionChanges prometheus.Counter
	SnapshotDuration prometheus.Histogram

	FeedPublished      prometheus.Counter
	FeedPublishErrors  prometheus.Counter
	SnapshotSaveErrors prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsNormalized,
		m.RecordsMalformed,
		m.RefreshFailures,
		m.RefreshDuration,
		m.StaleRefreshes,
		m.DatasetSize,
		m.SelectionChanges,
		m.SnapshotDuration,
		m.FeedPublished,
		m.FeedPublishErrors,
		m.SnapshotSaveErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "records_normalized_total",
			Help:      "Raw records successfully normalized, by source kind.",
		}, []string{"kind"}),
		RecordsMalformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "records_malformed_total",
			Help:      "Raw records skipped during normalization, by source kind.",
		}, []string{"kind"}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "refresh_failures_total",
			Help:      "Dataset refresh attempts that failed; the last good dataset is kept.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydroatlas",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-score refresh cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StaleRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "stale_refreshes_total",
			Help:      "Refresh results discarded because a newer refresh had started.",
		}),
		DatasetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hydroatlas",
			Name:      "dataset_size",
			Help:      "Objects in the current universe.",
		}),
		SelectionChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "selection_changes_total",
			Help:      "Object selections made.",
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydroatlas",
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of building a filtered and sorted view snapshot.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		FeedPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "feed_published_total",
			Help:      "Objects published to the downstream feed topic.",
		}),
		FeedPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "feed_publish_errors_total",
			Help:      "Failed feed publish attempts.",
		}),
		SnapshotSaveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydroatlas",
			Name:      "snapshot_save_errors_total",
			Help:      "Failed attempts to persist the last good dataset.",
		}),
	}
}
