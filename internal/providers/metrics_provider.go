package providers

import (
	"context"
	"time"

	"shortsd/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	AddIngested(source string, count int)
	IncPipelineRuns(status string)
	IncDownloads(status string)
}

// VideoCounter is the catalog view needed for the video gauge.
type VideoCounter interface {
	CountVideos(ctx context.Context) (int, error)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	ingestedTotal       *prometheus.CounterVec
	pipelineRuns        *prometheus.CounterVec
	downloadsTotal      *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddIngested(source string, count int) {
	m.ingestedTotal.WithLabelValues(source).Add(float64(count))
}

func (m *MetricsProvider) IncPipelineRuns(status string) {
	m.pipelineRuns.WithLabelValues(status).Inc()
}

func (m *MetricsProvider) IncDownloads(status string) {
	m.downloadsTotal.WithLabelValues(status).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, counter VideoCounter) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shortsd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shortsd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shortsd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shortsd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shortsd_backup_duration_seconds",
			Help:    "Duration of catalog backups in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		ingestedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shortsd_ingested_items_total",
			Help: "Short-form items stored per ingestion source",
		}, []string{"source"}),

		pipelineRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shortsd_pipeline_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"status"}),

		downloadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shortsd_downloads_total",
			Help: "Audio downloads by outcome",
		}, []string{"status"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "shortsd_catalog_videos",
		Help: "Number of videos stored in the catalog",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := counter.CountVideos(ctx)
		if err != nil {
			return 0
		}
		return float64(n)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) AddIngested(_ string, _ int)                      {}
func (n *noopMetrics) IncPipelineRuns(_ string)                         {}
func (n *noopMetrics) IncDownloads(_ string)                            {}
