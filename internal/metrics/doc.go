// Package metrics provides Prometheus instrumentation for the photo gallery.
//
// All metrics are registered with the default registry through promauto and
// prefixed with "photo_gallery_". Mount promhttp.Handler() on the metrics
// server to expose them:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Metric Categories
//
// HTTP:
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// Thumbnail pipeline:
//   - ThumbnailRequestsTotal: requests by result (created, cached, failed)
//   - BackendAttemptsTotal: every backend attempt by backend and outcome
//   - ThumbnailGenerationDuration: time taken by the backend that succeeded
//   - FatalErrorsTotal: fatal errors by pipeline stage
//   - BackupsTotal: backup guard actions
//   - SourceDecodeByFormat: images handed to a backend, by format
//
// Memory:
//   - MemoryBudgetBytes, MemoryBudgetRejections, MemoryCeilingBytes
//   - GoMemAllocBytes, GoMemSysBytes, MemoryUsageRatio (sampled by [Collector])
//   - MemoryCritical, MemoryCriticalEvents (set by the memory monitor)
//
// Delivery and management:
//   - AssetResponsesTotal, AssetBytesSent
//   - CategoryProvisionsTotal
//
// Filesystem retries, recorded through [FilesystemObserver]:
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemStaleErrors, FilesystemRetryDuration
//
// # Startup
//
//	metrics.InitializeMetrics()
//	filesystem.SetObserver(metrics.FilesystemObserver{})
//	collector := metrics.NewCollector(ceiling, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Share of thumbnails that needed a fallback backend:
//
//	sum(rate(photo_gallery_backend_attempts_total{backend!="libvips",outcome="success"}[1h]))
//	/ sum(rate(photo_gallery_backend_attempts_total{outcome="success"}[1h]))
//
// Oversized uploads rejected by the asset streamer:
//
//	rate(photo_gallery_asset_responses_total{status="413"}[1h])
package metrics
