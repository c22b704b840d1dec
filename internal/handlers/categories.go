package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// CategoryRequest is the body of POST /api/categories.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse describes a newly provisioned category.
type CategoryResponse struct {
	Name string `json:"name"`
}

const maxCategoryBody = 4 << 10

// CreateCategory provisions the gallery and thumbnail directories of a new
// category.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCategoryBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		metrics.CategoryProvisionsTotal.WithLabelValues("invalid").Inc()
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.provisioner.CreateCategoryDirs(req.Name)
	switch {
	case err == nil:
		metrics.CategoryProvisionsTotal.WithLabelValues("created").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, CategoryResponse{Name: req.Name})

	case errors.Is(err, filesystem.ErrInvalidCategory):
		metrics.CategoryProvisionsTotal.WithLabelValues("invalid").Inc()
		writeJSONError(w, "Invalid category name", http.StatusBadRequest)

	case errors.Is(err, filesystem.ErrCategoryExists):
		metrics.CategoryProvisionsTotal.WithLabelValues("exists").Inc()
		writeJSONError(w, "Category already exists", http.StatusConflict)

	default:
		metrics.CategoryProvisionsTotal.WithLabelValues("error").Inc()
		logging.Error("Category %q: %v", req.Name, err)
		writeJSONError(w, "Failed to create category", http.StatusInternalServerError)
	}
}
