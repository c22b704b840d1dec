package streaming

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/formats"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// DefaultMaxAssetSize is the largest file the streamer will send.
const DefaultMaxAssetSize int64 = 10 << 20

// ContentSecurityPolicy is sent with every delivered asset.
const ContentSecurityPolicy = "default-src 'none'; img-src 'self'; style-src 'unsafe-inline'; sandbox"

// Errors returned by Send. The matching status has already been written.
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrNotAnImage    = errors.New("asset is not an image")
	ErrAssetTooLarge = errors.New("asset too large")
	ErrAssetOpen     = errors.New("asset could not be opened")
)

// AssetStreamer delivers stored images with hardening headers.
type AssetStreamer struct {
	MaxSize int64
	Writer  WriterConfig
	Retry   filesystem.RetryConfig
}

// NewAssetStreamer returns a streamer refusing files above maxSize bytes.
// A maxSize of 0 selects DefaultMaxAssetSize.
func NewAssetStreamer(maxSize int64) *AssetStreamer {
	if maxSize <= 0 {
		maxSize = DefaultMaxAssetSize
	}
	return &AssetStreamer{
		MaxSize: maxSize,
		Writer:  DefaultWriterConfig(),
		Retry:   filesystem.DefaultRetryConfig(),
	}
}

// Send writes the file at path as the complete response. displayName is
// offered to the client in Content-Disposition; when empty the file's own
// name is used. HEAD requests get the headers only.
//
// Path validation is the caller's job. On failure Send has already written
// the error status and returns an error wrapping one of the Err* values.
func (s *AssetStreamer) Send(w http.ResponseWriter, r *http.Request, path, displayName string) error {
	info, err := filesystem.StatWithRetry(path, s.Retry)
	if err != nil || !info.Mode().IsRegular() {
		s.fail(w, http.StatusNotFound, "Not found")
		if err == nil {
			err = errors.New("not a regular file")
		}
		return fmt.Errorf("%w: %s: %v", ErrAssetNotFound, path, err)
	}

	mime, err := formats.Resolve(path)
	if err != nil && errors.Is(err, formats.ErrNotReadable) {
		s.fail(w, http.StatusNotFound, "Not found")
		return fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}
	if err != nil || !strings.HasPrefix(mime, "image/") {
		s.fail(w, http.StatusInternalServerError, "Unsupported file type")
		return fmt.Errorf("%w: %s (%s)", ErrNotAnImage, path, mime)
	}

	if info.Size() > s.MaxSize {
		s.fail(w, http.StatusRequestEntityTooLarge, "File too large")
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrAssetTooLarge, path, info.Size(), s.MaxSize)
	}

	file, err := filesystem.OpenWithRetry(path, s.Retry)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to read file")
		return fmt.Errorf("%w: %s: %v", ErrAssetOpen, path, err)
	}
	defer file.Close()

	if displayName == "" {
		displayName = filepath.Base(path)
	}

	h := w.Header()
	h.Set("Content-Type", mime)
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", SanitizeFilename(displayName)))
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	SetHardeningHeaders(h)

	w.WriteHeader(http.StatusOK)
	metrics.AssetResponsesTotal.WithLabelValues("200").Inc()

	if r.Method == http.MethodHead {
		return nil
	}

	written, err := Copy(r.Context(), w, file, s.Writer)
	metrics.AssetBytesSent.Add(float64(written))
	if err != nil {
		if errors.Is(err, ErrClientGone) {
			logging.Debug("Client went away while streaming %s after %d bytes", path, written)
		}
		return fmt.Errorf("streaming %s: %w", path, err)
	}
	return nil
}

func (s *AssetStreamer) fail(w http.ResponseWriter, status int, message string) {
	metrics.AssetResponsesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	SetHardeningHeaders(w.Header())
	http.Error(w, message, status)
}

// SetHardeningHeaders sets the security headers every image response
// carries, whether it comes from disk or is generated.
func SetHardeningHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Content-Security-Policy", ContentSecurityPolicy)
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N} ._()\-]+`)

// SanitizeFilename reduces name to a single path element that is safe to
// quote in a Content-Disposition header.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if name == "" {
		return "download"
	}
	return name
}
