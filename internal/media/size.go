package media

import (
	"fmt"
	"math"
)

// CalculateSize fits a source of srcW×srcH inside targetW×targetH while
// keeping the aspect ratio. A zero target leaves that axis unconstrained and
// images are never upscaled.
func CalculateSize(srcW, srcH, targetW, targetH int) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("%w: source %dx%d", ErrInvalidDimensions, srcW, srcH)
	}
	if targetW < 0 || targetH < 0 {
		return 0, 0, fmt.Errorf("%w: target %dx%d", ErrInvalidDimensions, targetW, targetH)
	}

	ratio := 1.0
	if targetW > 0 {
		ratio = math.Max(ratio, float64(srcW)/float64(targetW))
	}
	if targetH > 0 {
		ratio = math.Max(ratio, float64(srcH)/float64(targetH))
	}
	if ratio <= 1 {
		return srcW, srcH, nil
	}

	w := int(math.Round(float64(srcW) / ratio))
	h := int(math.Round(float64(srcH) / ratio))
	return max(w, 1), max(h, 1), nil
}
