package handlers

import (
	"errors"
	"net/http"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
	"photo-gallery/internal/streaming"

	"github.com/gorilla/mux"
)

// GetFile streams an original image from the gallery.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	h.serveOriginal(w, r, mux.Vars(r)["path"])
}

// Attach is the query-string form of GetFile: /attach?file=<path>.
func (h *Handlers) Attach(w http.ResponseWriter, r *http.Request) {
	h.serveOriginal(w, r, r.URL.Query().Get("file"))
}

func (h *Handlers) serveOriginal(w http.ResponseWriter, r *http.Request, requested string) {
	fullPath, err := media.ResolvePath(h.galleryDir, requested)
	if err != nil {
		logging.Warn("File: rejected path %q: %v", requested, err)
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	if err := h.streamer.Send(w, r, fullPath, ""); err != nil {
		logStreamError("File", requested, err)
	}
}

// GetThumbnail creates the thumbnail for a gallery image if needed and
// streams it. Any failure is answered with a placeholder image so that
// galleries never render broken images.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	requested := mux.Vars(r)["path"]
	logging.Debug("Thumbnail requested: %s", requested)

	target, err := h.generator.CreateThumbnail(requested, requested)
	if err != nil {
		logThumbnailError(requested, err)
		h.servePlaceholder(w, r, err)
		return
	}

	if err := h.streamer.Send(w, r, target.Path, ""); err != nil {
		logStreamError("Thumbnail", requested, err)
	}
}

func (h *Handlers) servePlaceholder(w http.ResponseWriter, r *http.Request, cause error) {
	data, err := media.Placeholder(h.thumbWidth, h.thumbHeight)
	if err != nil {
		logging.Error("Thumbnail: placeholder failed: %v", err)
		http.Error(w, "Thumbnail unavailable", http.StatusInternalServerError)
		return
	}

	streaming.SetHardeningHeaders(w.Header())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Thumbnail-Error", thumbnailErrorReason(cause))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.Debug("Thumbnail: placeholder write failed: %v", err)
	}
}

// thumbnailErrorReason names the failed stage without exposing paths.
func thumbnailErrorReason(err error) string {
	var fe *media.FatalError
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return "internal"
}

func logThumbnailError(requested string, err error) {
	switch {
	case errors.Is(err, media.ErrInvalidPath):
		logging.Warn("Thumbnail: rejected path %q: %v", requested, err)
	case errors.Is(err, media.ErrSourceUnreadable):
		logging.Debug("Thumbnail: %v", err)
	default:
		logging.Error("Thumbnail: %v", err)
	}
}

func logStreamError(kind, requested string, err error) {
	switch {
	case errors.Is(err, streaming.ErrAssetNotFound), errors.Is(err, streaming.ErrClientGone):
		logging.Debug("%s: %s: %v", kind, requested, err)
	default:
		logging.Warn("%s: %s: %v", kind, requested, err)
	}
}
