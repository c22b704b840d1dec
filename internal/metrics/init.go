package metrics

// Label values shared with the packages that record them.
var (
	backendNames   = []string{"libvips", "imaging", "builtin"}
	outcomes       = []string{"success", "unsupported_format", "memory_exceeded", "encoding_failure"}
	fatalStages    = []string{"path", "source", "dimensions", "format", "destination", "backends"}
	backupActions  = []string{"created", "restored", "discarded", "discard_failed", "restore_failed"}
	formatTags     = []string{"jpeg", "png", "gif", "webp", "tiff", "bmp", "heic", "heif", "avif"}
	volumes        = []string{"gallery", "thumbnail", "unknown"}
	retryOps       = []string{"stat", "open"}
	assetStatuses  = []string{"200", "404", "413", "500"}
	thumbResults   = []string{"created", "cached", "failed"}
	provisionStats = []string{"created", "invalid", "exists", "error"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, b := range backendNames {
		for _, o := range outcomes {
			BackendAttemptsTotal.WithLabelValues(b, o)
		}
		ThumbnailGenerationDuration.WithLabelValues(b)
		MemoryBudgetRejections.WithLabelValues(b)
	}

	for _, s := range fatalStages {
		FatalErrorsTotal.WithLabelValues(s)
	}
	for _, a := range backupActions {
		BackupsTotal.WithLabelValues(a)
	}
	for _, f := range formatTags {
		SourceDecodeByFormat.WithLabelValues(f)
	}

	for _, op := range retryOps {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, s := range assetStatuses {
		AssetResponsesTotal.WithLabelValues(s)
	}
	for _, r := range thumbResults {
		ThumbnailRequestsTotal.WithLabelValues(r)
	}
	for _, r := range provisionStats {
		CategoryProvisionsTotal.WithLabelValues(r)
	}
}
