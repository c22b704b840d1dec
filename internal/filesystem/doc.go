/*
Package filesystem provides the gallery's filesystem layer: resilient stat/open
with retry for NFS stale file handles, volume labelling for metrics, and the
category directory provisioner.

# Retry

StatWithRetry and OpenWithRetry wrap os.Stat and os.Open. Only ESTALE
(errno 116) triggers a retry, with exponential backoff capped at
RetryConfig.MaxBackoff. Every other error is returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

# Volumes

A VolumeResolver maps absolute paths to the configured roots ("gallery",
"thumbnail") by longest prefix so that retry metrics can be labelled per
mount. The resolver and the metrics Observer are installed once at startup
with SetDefaultVolumeResolver and SetObserver; both are optional.

# Provisioning

Provisioner.CreateCategoryDirs creates <gallery>/<name> and
<thumbnail>/<name> together and seeds each with a copy of the root's
directory-listing stub. Directories created by a failed call are removed
again before the error is returned.
*/
package filesystem
