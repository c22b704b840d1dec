package handlers

import (
	"net/http"
	"runtime"
	"time"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/media"
	"photo-gallery/internal/startup"
)

const (
	statusHealthy     = "healthy"
	statusDegraded    = "degraded"
	statusUnavailable = "unavailable"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	GalleryReachable   bool     `json:"galleryReachable"`
	ThumbnailsWritable bool     `json:"thumbnailsWritable"`
	VipsAvailable      bool     `json:"vipsAvailable"`
	Backends           []string `json:"backends"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// galleryReachable reports whether the gallery root can be listed.
func (h *Handlers) galleryReachable() bool {
	info, err := filesystem.StatWithRetry(h.galleryDir, filesystem.DefaultRetryConfig())
	return err == nil && info.IsDir()
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Version:            startup.Version,
		Uptime:             time.Since(h.startTime).Round(time.Second).String(),
		GalleryReachable:   h.galleryReachable(),
		ThumbnailsWritable: h.thumbnailsWritable,
		VipsAvailable:      media.IsVipsAvailable(),
		Backends:           h.generator.Backends(),
		GoVersion:          runtime.Version(),
		NumCPU:             runtime.NumCPU(),
		NumGoroutine:       runtime.NumGoroutine(),
	}
	response.Ready = response.GalleryReachable

	switch {
	case !response.GalleryReachable:
		response.Status = statusUnavailable
	case !response.ThumbnailsWritable, h.vipsRequested && !response.VipsAvailable:
		response.Status = statusDegraded
	default:
		response.Status = statusHealthy
	}

	w.Header().Set("Content-Type", "application/json")
	if response.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if r.Method != http.MethodHead {
		writeJSON(w, response)
	}
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when the gallery can be served
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.galleryReachable() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{"status": "ready"})
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	writeJSON(w, map[string]string{"status": "not_ready"})
}
