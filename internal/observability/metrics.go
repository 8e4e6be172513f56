package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the frame
// acquisition pipeline.
type Metrics struct {
	RefreshRuns     prometheus.Counter
	RefreshFailures prometheus.Counter
	RefreshDuration prometheus.Histogram

	// Frame assembly metrics.
	FramesAssembled  prometheus.Counter
	FramesSkipped    *prometheus.CounterVec // labels: reason={download,decode}
	LightningMatched prometheus.Histogram

	// Remote catalog and cache metrics.
	CatalogRequests  *prometheus.CounterVec // labels: product={imagery,lightning}, outcome={success,error}
	CacheLookups     *prometheus.CounterVec // labels: result={hit,miss}
	DownloadBytes    prometheus.Counter
	DownloadDuration prometheus.Histogram

	FramesInStore   prometheus.Gauge
	LastRefreshTime prometheus.Gauge
	AnnounceEnabled prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "refresh_runs_total",
			Help:      "Total refresh cycles started.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "refresh_failures_total",
			Help:      "Refresh cycles that ended in an error.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goes_frames",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete discover-fetch-assemble cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		FramesAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "frames_assembled_total",
			Help:      "Frames that made it into a finished set.",
		}),
		FramesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "frames_skipped_total",
			Help:      "Discovered frames dropped from a set, by reason.",
		}, []string{"reason"}),
		LightningMatched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goes_frames",
			Name:      "lightning_objects_per_frame",
			Help:      "Lightning objects matched to one imagery frame.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "catalog_requests_total",
			Help:      "Bucket listing requests by product and outcome.",
		}, []string{"product", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "cache_lookups_total",
			Help:      "Local blob cache lookups by result.",
		}, []string{"result"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goes_frames",
			Name:      "download_bytes_total",
			Help:      "Bytes fetched from the remote bucket.",
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goes_frames",
			Name:      "download_duration_seconds",
			Help:      "Duration of a single object download.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FramesInStore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goes_frames",
			Name:      "frames_in_store",
			Help:      "Frames in the most recent published set.",
		}),
		LastRefreshTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goes_frames",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
		AnnounceEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goes_frames",
			Name:      "announce_enabled",
			Help:      "1 when frame sets are announced to Kafka, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.RefreshRuns,
		m.RefreshFailures,
		m.RefreshDuration,
		m.FramesAssembled,
		m.FramesSkipped,
		m.LightningMatched,
		m.CatalogRequests,
		m.CacheLookups,
		m.DownloadBytes,
		m.DownloadDuration,
		m.FramesInStore,
		m.LastRefreshTime,
		m.AnnounceEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RefreshRuns:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "goes_frames", Name: "refresh_runs_total"}),
		RefreshFailures:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "goes_frames", Name: "refresh_failures_total"}),
		RefreshDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "goes_frames", Name: "refresh_duration_seconds"}),
		FramesAssembled:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "goes_frames", Name: "frames_assembled_total"}),
		FramesSkipped:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "goes_frames", Name: "frames_skipped_total"}, []string{"reason"}),
		LightningMatched: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "goes_frames", Name: "lightning_objects_per_frame"}),
		CatalogRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "goes_frames", Name: "catalog_requests_total"}, []string{"product", "outcome"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "goes_frames", Name: "cache_lookups_total"}, []string{"result"}),
		DownloadBytes:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "goes_frames", Name: "download_bytes_total"}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "goes_frames", Name: "download_duration_seconds"}),
		FramesInStore:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "goes_frames", Name: "frames_in_store"}),
		LastRefreshTime:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "goes_frames", Name: "last_refresh_timestamp_seconds"}),
		AnnounceEnabled:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "goes_frames", Name: "announce_enabled"}),
	}
}
