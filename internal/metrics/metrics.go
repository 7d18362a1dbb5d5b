package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec
	HTTPResponseSize    prometheus.HistogramVec

	// Avatar pipeline metrics
	AvatarUploadsTotal         prometheus.CounterVec
	AvatarDeletesTotal         prometheus.CounterVec
	AvatarRollbacksTotal       prometheus.CounterVec
	AvatarCleanupFailuresTotal prometheus.CounterVec
	AvatarResizeDuration       prometheus.HistogramVec
	AvatarUploadSizeBytes      prometheus.HistogramVec

	// Presign cache metrics
	PresignCacheHitsTotal   prometheus.CounterVec
	PresignCacheMissesTotal prometheus.CounterVec

	// Object storage metrics
	StorageOperationsTotal   prometheus.CounterVec
	StorageOperationDuration prometheus.HistogramVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			// HTTP metrics
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),

			// Avatar pipeline metrics
			AvatarUploadsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "avatar_uploads_total",
					Help: "Total number of avatar upload attempts",
				},
				[]string{"status"},
			),
			AvatarDeletesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "avatar_deletes_total",
					Help: "Total number of avatar delete attempts",
				},
				[]string{"status"},
			),
			AvatarRollbacksTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "avatar_rollbacks_total",
					Help: "Total number of compensating rollbacks after a failed upload",
				},
				[]string{"phase"},
			),
			AvatarCleanupFailuresTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "avatar_cleanup_failures_total",
					Help: "Total number of object deletions that failed during best-effort cleanup",
				},
				[]string{"reason"},
			),
			AvatarResizeDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "avatar_resize_duration_seconds",
					Help:    "Time to decode, resize and re-encode one avatar variant",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"variant"},
			),
			AvatarUploadSizeBytes: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "avatar_upload_size_bytes",
					Help:    "Size of uploaded avatar source files in bytes",
					Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
				},
				[]string{"extension"},
			),

			// Presign cache metrics
			PresignCacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "presign_cache_hits_total",
					Help: "Total number of presigned URL cache hits",
				},
				[]string{"variant"},
			),
			PresignCacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "presign_cache_misses_total",
					Help: "Total number of presigned URL cache misses",
				},
				[]string{"variant"},
			),

			// Object storage metrics
			StorageOperationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "storage_operations_total",
					Help: "Total number of object storage operations",
				},
				[]string{"operation", "status"},
			),
			StorageOperationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "storage_operation_duration_seconds",
					Help:    "Object storage operation latency in seconds",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"operation"},
			),

			// Error metrics
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
