package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Thumbnail pipeline metrics
var (
	ThumbnailRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_thumbnail_requests_total",
			Help: "Thumbnail requests by result (created, cached, failed)",
		},
		[]string{"result"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_gallery_thumbnail_generation_duration_seconds",
			Help:    "Time spent by the backend that produced a thumbnail",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	BackendAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_backend_attempts_total",
			Help: "Resize backend attempts by outcome",
		},
		[]string{"backend", "outcome"},
	)

	FatalErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_thumbnail_fatal_errors_total",
			Help: "Thumbnail requests aborted by a fatal error, by stage",
		},
		[]string{"stage"},
	)

	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_thumbnail_backups_total",
			Help: "Backup guard actions (created, restored, discarded, discard_failed, restore_failed)",
		},
		[]string{"action"},
	)

	SourceDecodeByFormat = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_source_decodes_total",
			Help: "Source images handed to a backend, by format tag",
		},
		[]string{"format"},
	)
)

// Memory metrics
var (
	MemoryBudgetBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_memory_budget_bytes",
			Help: "Largest pixel buffer a single resize may allocate (0 = unlimited)",
		},
	)

	MemoryBudgetRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_memory_budget_rejections_total",
			Help: "Resize attempts skipped because the estimate exceeded the budget",
		},
		[]string{"backend"},
	)

	MemoryCeilingBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_memory_ceiling_bytes",
			Help: "Configured process memory ceiling",
		},
	)

	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_go_mem_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_go_mem_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_memory_usage_ratio",
			Help: "Go runtime memory obtained from the OS as a ratio of the ceiling",
		},
	)

	MemoryCritical = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_memory_critical",
			Help: "1 while the heap is above the critical watermark and decodes are refused",
		},
	)

	MemoryCriticalEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_gallery_memory_critical_events_total",
			Help: "Times the heap crossed the critical watermark",
		},
	)
)

// Asset delivery metrics
var (
	AssetResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_asset_responses_total",
			Help: "Asset streamer responses by status code",
		},
		[]string{"status"},
	)

	AssetBytesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_gallery_asset_bytes_sent_total",
			Help: "Body bytes written by the asset streamer",
		},
	)
)

// Gallery management metrics
var (
	CategoryProvisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_category_provisions_total",
			Help: "Category directory provisioning by result",
		},
		[]string{"result"},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_filesystem_retry_attempts_total",
			Help: "Filesystem operations retried after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_gallery_filesystem_stale_errors_total",
			Help: "ESTALE errors seen by filesystem operations",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_gallery_filesystem_retry_duration_seconds",
			Help:    "Total time spent in retried filesystem operations",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_gallery_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)

	LogLinesDropped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_gallery_log_lines_dropped",
			Help: "Log lines discarded because the log queue was full",
		},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
