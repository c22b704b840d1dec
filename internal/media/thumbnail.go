package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/formats"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/memory"
	"photo-gallery/internal/metrics"
)

// Config is the generator's view of the gallery configuration.
type Config struct {
	GalleryRoot   string
	ThumbnailRoot string

	// Width and Height bound the thumbnail; 0 leaves an axis unconstrained.
	Width  int
	Height int

	// Sources larger than this are rejected before any backend runs.
	// 0 disables a check.
	MaxSourceDimension int
	MaxSourcePixels    int64
}

// Capabilities selects the optional backends registered at startup.
type Capabilities struct {
	Vips    bool
	Imaging bool
}

// Generator creates thumbnails by trying its backends in a fixed priority
// order. The built-in backend is always last.
type Generator struct {
	config   Config
	backends []Backend
}

// NewGenerator registers libvips (when requested and initialized), imaging
// (when requested) and the built-in backend, in that order.
func NewGenerator(config Config, budget memory.Budget, caps Capabilities) *Generator {
	var backends []Backend
	if caps.Vips {
		if IsVipsAvailable() {
			backends = append(backends, NewVipsBackend(budget))
		} else {
			logging.Warn("libvips backend requested but libvips is not initialized, skipping")
		}
	}
	if caps.Imaging {
		backends = append(backends, NewImagingBackend(budget))
	}
	return NewGeneratorWithBackends(config, budget, backends...)
}

// NewGeneratorWithBackends registers backends in the given order followed by
// the built-in backend.
func NewGeneratorWithBackends(config Config, budget memory.Budget, backends ...Backend) *Generator {
	list := make([]Backend, 0, len(backends)+1)
	for _, b := range backends {
		if b.Name() == BuiltinName {
			continue
		}
		list = append(list, b)
	}
	list = append(list, NewBuiltinBackend(budget))

	g := &Generator{config: config, backends: list}
	logging.Info("Thumbnail backends: %s", strings.Join(g.Backends(), " -> "))
	return g
}

// Backends returns the registered backend names in priority order.
func (g *Generator) Backends() []string {
	names := make([]string, len(g.backends))
	for i, b := range g.backends {
		names[i] = b.Name()
	}
	return names
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.config
}

// unsafePathChars are rejected anywhere in a requested path.
var unsafePathChars = regexp.MustCompile(`[\x00-\x1f\x7f<>"|?*\\]`)

// ResolvePath validates p and returns it as an absolute path inside root.
// Relative paths are taken relative to root; ".." segments are refused
// outright rather than cleaned away. Symlinks are followed for the
// containment check, so a link pointing out of root is refused too.
func ResolvePath(root, p string) (string, error) {
	if p == "" || unsafePathChars.MatchString(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, segment := range strings.Split(filepath.ToSlash(p), "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q contains a parent reference", ErrInvalidPath, p)
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: root %q: %v", ErrInvalidPath, root, err)
	}

	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(absRoot, full)
	}
	full = filepath.Clean(full)

	if !isSubPath(absRoot, full) {
		return "", fmt.Errorf("%w: %q is outside %s", ErrInvalidPath, p, absRoot)
	}

	realRoot, err := resolveExisting(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: root %q: %v", ErrInvalidPath, root, err)
	}
	realFull, err := resolveExisting(full)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidPath, p, err)
	}
	if !isSubPath(realRoot, realFull) {
		return "", fmt.Errorf("%w: %q resolves outside %s", ErrInvalidPath, p, absRoot)
	}
	return full, nil
}

// resolveExisting evaluates symlinks in the longest existing prefix of path
// and appends the missing remainder unchanged. A dangling symlink is an
// error, since writing through it would land wherever it points.
func resolveExisting(path string) (string, error) {
	var missing []string
	for cur := path; ; {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{real}, missing...)...), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if info, lerr := os.Lstat(cur); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("dangling symlink %s", cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path, nil
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}

// isSubPath reports whether path lies strictly inside root.
func isSubPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Describe inspects the source image at path.
func (g *Generator) Describe(path string) (ImageDescriptor, error) {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return ImageDescriptor{}, fatal(StageSource, path, fmt.Errorf("%w: %v", ErrSourceUnreadable, err))
	}
	if !info.Mode().IsRegular() {
		return ImageDescriptor{}, fatal(StageSource, path, fmt.Errorf("%w: not a regular file", ErrSourceUnreadable))
	}

	mime, err := formats.Resolve(path)
	if err != nil {
		if errors.Is(err, formats.ErrNotReadable) {
			return ImageDescriptor{}, fatal(StageSource, path, fmt.Errorf("%w: %v", ErrSourceUnreadable, err))
		}
		return ImageDescriptor{}, fatal(StageFormat, path, err)
	}
	if f, _ := formats.Lookup(mime); !f.Resizable {
		return ImageDescriptor{}, fatal(StageFormat, path,
			fmt.Errorf("%w: %s cannot be thumbnailed", formats.ErrUnsupportedFormat, mime))
	}

	w, h, err := probeDimensions(path)
	if err != nil {
		return ImageDescriptor{}, fatal(StageSource, path, fmt.Errorf("%w: %v", ErrSourceUnreadable, err))
	}

	if err := g.checkCeiling(w, h); err != nil {
		return ImageDescriptor{}, fatal(StageDimensions, path, err)
	}

	return ImageDescriptor{Path: path, MIME: mime, Width: w, Height: h}, nil
}

func (g *Generator) checkCeiling(w, h int) error {
	if limit := g.config.MaxSourceDimension; limit > 0 && (w > limit || h > limit) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrSourceTooLarge, w, h, limit)
	}
	if limit := g.config.MaxSourcePixels; limit > 0 && int64(w)*int64(h) > limit {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrSourceTooLarge, w, h, limit)
	}
	return nil
}

// CreateThumbnail makes sure a thumbnail of sourcePath exists at thumbPath.
// Relative paths are resolved against the gallery and thumbnail roots. An
// existing thumbnail that already has the target dimensions is left alone.
func (g *Generator) CreateThumbnail(sourcePath, thumbPath string) (target ThumbnailTarget, err error) {
	defer func() {
		var fe *FatalError
		switch {
		case errors.As(err, &fe):
			metrics.FatalErrorsTotal.WithLabelValues(fe.Stage).Inc()
			metrics.ThumbnailRequestsTotal.WithLabelValues("failed").Inc()
		case err != nil:
			metrics.ThumbnailRequestsTotal.WithLabelValues("failed").Inc()
		}
	}()

	src, err := ResolvePath(g.config.GalleryRoot, sourcePath)
	if err != nil {
		return ThumbnailTarget{}, fatal(StagePath, sourcePath, err)
	}
	dst, err := ResolvePath(g.config.ThumbnailRoot, thumbPath)
	if err != nil {
		return ThumbnailTarget{}, fatal(StagePath, thumbPath, err)
	}

	desc, err := g.Describe(src)
	if err != nil {
		return ThumbnailTarget{}, err
	}

	w, h, err := CalculateSize(desc.Width, desc.Height, g.config.Width, g.config.Height)
	if err != nil {
		return ThumbnailTarget{}, fatal(StageDimensions, src, err)
	}
	target = ThumbnailTarget{Path: dst, Width: w, Height: h}

	if info, statErr := filesystem.StatWithRetry(dst, filesystem.DefaultRetryConfig()); statErr == nil {
		if !info.Mode().IsRegular() {
			return target, fatal(StageDestination, dst,
				fmt.Errorf("%w: not a regular file", ErrDestinationNotWritable))
		}
		target.Existed = true
		if tw, th, probeErr := probeDimensions(dst); probeErr == nil && tw == w && th == h {
			logging.Debug("Thumbnail up to date: %s (%dx%d)", dst, w, h)
			metrics.ThumbnailRequestsTotal.WithLabelValues("cached").Inc()
			return target, nil
		}
	}

	if err := checkDestinationDir(filepath.Dir(dst)); err != nil {
		return target, fatal(StageDestination, dst, err)
	}

	if err := g.Resize(desc, target); err != nil {
		return target, err
	}

	metrics.ThumbnailRequestsTotal.WithLabelValues("created").Inc()
	return target, nil
}

func checkDestinationDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationNotWritable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDestinationNotWritable, dir)
	}
	if err := filesystem.CheckWritable(dir); err != nil {
		return fmt.Errorf("%w: %v", ErrDestinationNotWritable, err)
	}
	return nil
}

// Resize runs the fallback chain for an already described source. Every
// failed attempt is logged before the next backend is tried; when none
// succeeds the returned FatalError lists all of them.
func (g *Generator) Resize(src ImageDescriptor, target ThumbnailTarget) error {
	attempts := make([]string, 0, len(g.backends))

	for _, b := range g.backends {
		start := time.Now()

		result := Result{
			Outcome: OutcomeUnsupportedFormat,
			Err:     fmt.Errorf("%s does not support %s", b.Name(), src.MIME),
		}
		if b.Supports(src.MIME) {
			result = b.Resize(src, target)
		}

		metrics.BackendAttemptsTotal.WithLabelValues(b.Name(), result.Outcome.String()).Inc()

		if result.Outcome == OutcomeSuccess {
			elapsed := time.Since(start)
			metrics.ThumbnailGenerationDuration.WithLabelValues(b.Name()).Observe(elapsed.Seconds())
			logging.Debug("Thumbnail %s created by %s in %v (%dx%d)",
				target.Path, b.Name(), elapsed, target.Width, target.Height)
			return nil
		}

		if result.Outcome == OutcomeUnsupportedFormat {
			logging.Debug("Backend %s skipped %s: %v", b.Name(), src.Path, result.Err)
		} else {
			logging.Warn("Backend %s failed on %s (%s): %v", b.Name(), src.Path, result.Outcome, result.Err)
		}
		attempts = append(attempts, fmt.Sprintf("%s: %s: %v", b.Name(), result.Outcome, result.Err))
	}

	return fatal(StageBackends, src.Path,
		fmt.Errorf("%w: %s", ErrBackendsExhausted, strings.Join(attempts, "; ")))
}
