package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"photo-gallery/internal/formats"
	"photo-gallery/internal/startup"
)

func TestGetFormats(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := serve(h.GetFormats, http.MethodGet, "/api/formats", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var table []formats.Format
	if err := json.NewDecoder(w.Body).Decode(&table); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, f := range table {
		if f.MIME == formats.MIMEJPEG {
			found = true
			if f.Extension != ".jpg" || !f.Resizable {
				t.Errorf("jpeg entry = %+v", f)
			}
		}
	}
	if !found {
		t.Error("jpeg missing from /api/formats")
	}
}

func TestGetBackends(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := serve(h.GetBackends, http.MethodGet, "/api/backends", "")

	var resp BackendsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Backends) != 1 || resp.Backends[0] != "builtin" {
		t.Errorf("Backends = %v, want [builtin]", resp.Backends)
	}
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := serve(h.HealthCheck, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != statusHealthy || !resp.Ready || !resp.GalleryReachable {
		t.Errorf("health = %+v", resp)
	}
	if resp.Version != startup.Version {
		t.Errorf("Version = %q", resp.Version)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	h, _ := newTestHandlers(t)
	h.thumbnailsWritable = false

	w := serve(h.HealthCheck, http.MethodGet, "/health", "")
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusOK || resp.Status != statusDegraded {
		t.Errorf("status %d, health %q; want 200 degraded", w.Code, resp.Status)
	}
}

func TestHealthAndReadiness_GalleryGone(t *testing.T) {
	h, g := newTestHandlers(t)
	if err := os.RemoveAll(g.gallery); err != nil {
		t.Fatal(err)
	}

	w := serve(h.HealthCheck, http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), statusUnavailable) {
		t.Errorf("body = %s", w.Body.String())
	}

	w = serve(h.ReadinessCheck, http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want 503", w.Code)
	}
}

func TestLivenessAndReadiness(t *testing.T) {
	h, _ := newTestHandlers(t)

	if w := serve(h.LivenessCheck, http.MethodGet, "/livez", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alive") {
		t.Errorf("livez = %d %s", w.Code, w.Body.String())
	}
	if w := serve(h.LivenessCheck, http.MethodHead, "/livez", ""); w.Body.Len() != 0 {
		t.Error("HEAD livez should have no body")
	}
	if w := serve(h.ReadinessCheck, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Errorf("readyz = %d", w.Code)
	}
}

func TestGetVersion(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := serve(h.GetVersion, http.MethodGet, "/version", "")

	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info != startup.GetBuildInfo() {
		t.Errorf("version = %+v", info)
	}
	if w.Header().Get("Cache-Control") != "no-cache" {
		t.Error("version should not be cached")
	}
}

func TestMetricsHandler(t *testing.T) {
	h, _ := newTestHandlers(t)
	w := httptest.NewRecorder()
	h.MetricsHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "photo_gallery_memory_budget_bytes") {
		t.Error("gallery metrics missing from /metrics")
	}
}
