package handlers

import (
	"net/http"

	"photo-gallery/internal/formats"
	"photo-gallery/internal/media"
)

// BackendsResponse lists the resize backends in the order they are tried.
type BackendsResponse struct {
	Backends      []string `json:"backends"`
	VipsAvailable bool     `json:"vipsAvailable"`
}

// GetFormats returns the known image formats.
func (h *Handlers) GetFormats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, formats.Table())
}

// GetBackends returns the registered resize backends.
func (h *Handlers) GetBackends(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, BackendsResponse{
		Backends:      h.generator.Backends(),
		VipsAvailable: media.IsVipsAvailable(),
	})
}
