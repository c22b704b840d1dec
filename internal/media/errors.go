package media

import (
	"errors"
	"fmt"
)

// Fatal conditions. A FatalError always wraps one of these.
var (
	ErrInvalidPath            = errors.New("invalid path")
	ErrSourceUnreadable       = errors.New("source unreadable")
	ErrSourceTooLarge         = errors.New("source exceeds size ceiling")
	ErrDestinationNotWritable = errors.New("destination not writable")
	ErrBackendsExhausted      = errors.New("no backend could produce a thumbnail")
	ErrInvalidDimensions      = errors.New("invalid dimensions")
)

// Pipeline stages reported in FatalError and metrics.
const (
	StagePath        = "path"
	StageSource      = "source"
	StageDimensions  = "dimensions"
	StageFormat      = "format"
	StageDestination = "destination"
	StageBackends    = "backends"
)

// FatalError stops a thumbnail request. It is never retried.
type FatalError struct {
	Stage string
	Path  string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("thumbnail %s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(stage, path string, err error) *FatalError {
	return &FatalError{Stage: stage, Path: path, Err: err}
}
