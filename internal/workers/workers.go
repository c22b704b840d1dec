package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that pins the worker count.
const OverrideEnv = "GALLERY_WORKERS"

// Count returns the number of workers for a task: GOMAXPROCS (which follows
// the container CPU limit) times multiplier, at least one, capped at limit
// when limit > 0. A positive GALLERY_WORKERS value replaces the computed
// count but is still capped.
func Count(multiplier float64, limit int) int {
	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if override := os.Getenv(OverrideEnv); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			workers = n
		}
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU is Count with one worker per CPU, for decode/encode work.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO is Count with two workers per CPU, for stat/open/sniff work that
// mostly waits on the filesystem.
func ForIO(limit int) int {
	return Count(2.0, limit)
}
