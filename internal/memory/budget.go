package memory

import (
	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

const (
	// BudgetFraction is the share of the process memory ceiling one resize
	// may claim for its decoded pixel buffer.
	BudgetFraction = 0.25

	// DefaultBytesPerPixel is the baseline estimate (8-bit RGB).
	DefaultBytesPerPixel = 3
)

// Budget rejects decodes whose estimated pixel buffer would exceed a
// fraction of the process memory ceiling. The estimate ignores codec
// working buffers and animation frames.
type Budget struct {
	ceiling  int64
	fraction float64
	monitor  *Monitor
}

// NewBudget returns a budget of BudgetFraction of ceiling. A ceiling of zero
// or less disables the check.
func NewBudget(ceiling int64) Budget {
	b := Budget{ceiling: ceiling, fraction: BudgetFraction}
	metrics.MemoryBudgetBytes.Set(float64(b.Limit()))
	if ceiling <= 0 {
		logging.Warn("Memory budget: no ceiling configured, pixel buffer checks disabled")
	} else {
		logging.Debug("Memory budget: %s of %s ceiling", FormatBytes(b.Limit()), FormatBytes(ceiling))
	}
	return b
}

// Ceiling returns the configured process memory ceiling.
func (b Budget) Ceiling() int64 {
	return b.ceiling
}

// Limit returns the largest pixel buffer the budget allows, 0 when unlimited.
func (b Budget) Limit() int64 {
	if b.ceiling <= 0 {
		return 0
	}
	return int64(float64(b.ceiling) * b.fraction)
}

// Estimate returns width × height × bytesPerPixel, saturating instead of
// overflowing.
func Estimate(width, height, bytesPerPixel int) int64 {
	if width <= 0 || height <= 0 || bytesPerPixel <= 0 {
		return 0
	}
	const maxInt64 = int64(^uint64(0) >> 1)
	w, h, bpp := int64(width), int64(height), int64(bytesPerPixel)
	if w > maxInt64/h || w*h > maxInt64/bpp {
		return maxInt64
	}
	return w * h * bpp
}

// Allows reports whether an estimated allocation fits the budget.
func (b Budget) Allows(estimate int64) bool {
	if b.ceiling <= 0 {
		return true
	}
	return estimate <= b.Limit()
}

// WithMonitor returns a copy of b that reports pressure while m is critical.
func (b Budget) WithMonitor(m *Monitor) Budget {
	b.monitor = m
	return b
}

// UnderPressure reports whether the attached monitor has seen the heap cross
// its critical watermark. Backends refuse every decode while it is true.
func (b Budget) UnderPressure() bool {
	return b.monitor.IsCritical()
}
