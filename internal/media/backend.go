package media

import (
	"fmt"
	"os"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/memory"
	"photo-gallery/internal/metrics"
)

// ImageDescriptor is a source image as found on disk. Build it with
// Generator.Describe; it is not modified afterwards.
type ImageDescriptor struct {
	Path   string
	MIME   string
	Width  int
	Height int
}

// ThumbnailTarget is where a thumbnail goes and how large it must be.
// Existed records whether a file was already at Path before the request.
type ThumbnailTarget struct {
	Path    string
	Width   int
	Height  int
	Existed bool
}

// Outcome classifies one backend attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnsupportedFormat
	OutcomeMemoryExceeded
	OutcomeEncodingFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnsupportedFormat:
		return "unsupported_format"
	case OutcomeMemoryExceeded:
		return "memory_exceeded"
	case OutcomeEncodingFailure:
		return "encoding_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of one backend attempt. Err carries the detail for
// every outcome except OutcomeSuccess.
type Result struct {
	Outcome Outcome
	Err     error
}

// Backend decodes, scales and re-encodes one image.
//
// Resize must leave the target either untouched or replaced by a complete
// thumbnail of exactly target.Width×target.Height.
type Backend interface {
	Name() string
	Supports(mime string) bool
	EstimateMemory(width, height int) int64
	Resize(src ImageDescriptor, target ThumbnailTarget) Result
}

// pipeline holds the parts of a backend that differ between libraries and
// runs the steps they share.
type pipeline struct {
	name          string
	bytesPerPixel int
	budget        memory.Budget

	// formats maps a canonical MIME type to the library's own format tag.
	formats map[string]string

	// compiledIn cross-checks a tag against what the library can actually
	// decode and encode. src is zero when called from Supports.
	compiledIn func(src ImageDescriptor, tag string) bool

	// encode returns the thumbnail bytes for src scaled to target.
	encode func(src ImageDescriptor, target ThumbnailTarget, tag string) ([]byte, error)
}

func (p *pipeline) Name() string {
	return p.name
}

func (p *pipeline) nativeTag(src ImageDescriptor) (string, bool) {
	tag, ok := p.formats[src.MIME]
	if !ok {
		return "", false
	}
	if p.compiledIn != nil && !p.compiledIn(src, tag) {
		return "", false
	}
	return tag, true
}

func (p *pipeline) Supports(mime string) bool {
	_, ok := p.nativeTag(ImageDescriptor{MIME: mime})
	return ok
}

func (p *pipeline) EstimateMemory(width, height int) int64 {
	return memory.Estimate(width, height, p.bytesPerPixel)
}

func (p *pipeline) Resize(src ImageDescriptor, target ThumbnailTarget) Result {
	tag, ok := p.nativeTag(src)
	if !ok {
		return Result{
			Outcome: OutcomeUnsupportedFormat,
			Err:     fmt.Errorf("%s cannot handle %s", p.name, src.MIME),
		}
	}

	if p.budget.UnderPressure() {
		metrics.MemoryBudgetRejections.WithLabelValues(p.name).Inc()
		return Result{
			Outcome: OutcomeMemoryExceeded,
			Err:     fmt.Errorf("heap above critical watermark, %dx%d decode refused", src.Width, src.Height),
		}
	}

	estimate := p.EstimateMemory(src.Width, src.Height)
	if !p.budget.Allows(estimate) {
		metrics.MemoryBudgetRejections.WithLabelValues(p.name).Inc()
		return Result{
			Outcome: OutcomeMemoryExceeded,
			Err: fmt.Errorf("%dx%d needs ~%s, budget is %s", src.Width, src.Height,
				memory.FormatBytes(estimate), memory.FormatBytes(p.budget.Limit())),
		}
	}

	metrics.SourceDecodeByFormat.WithLabelValues(tag).Inc()

	err := guardedWrite(target, func() ([]byte, error) {
		return p.encode(src, target, tag)
	})
	if err != nil {
		return Result{Outcome: OutcomeEncodingFailure, Err: err}
	}
	return Result{Outcome: OutcomeSuccess}
}

// guardedWrite moves any existing thumbnail aside, writes the output of
// produce and checks its dimensions. On failure the previous thumbnail is
// put back.
func guardedWrite(target ThumbnailTarget, produce func() ([]byte, error)) error {
	backup, err := NewBackupHandle(target.Path)
	if err != nil {
		return err
	}

	data, err := produce()
	if err == nil {
		err = writeVerified(target, data)
	}

	if err != nil {
		if rmErr := os.Remove(target.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("Failed to remove partial thumbnail %s: %v", target.Path, rmErr)
		}
		if restoreErr := backup.Restore(); restoreErr != nil {
			return fmt.Errorf("%w (restore failed: %v)", err, restoreErr)
		}
		return err
	}

	backup.Discard()
	return nil
}

func writeVerified(target ThumbnailTarget, data []byte) error {
	if err := os.WriteFile(target.Path, data, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}

	w, h, err := probeDimensions(target.Path)
	if err != nil {
		return fmt.Errorf("verify thumbnail: %w", err)
	}
	if w != target.Width || h != target.Height {
		return fmt.Errorf("thumbnail is %dx%d, want %dx%d", w, h, target.Width, target.Height)
	}
	return nil
}
