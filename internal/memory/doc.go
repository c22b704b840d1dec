// Package memory configures the Go runtime memory limit and guards image
// decodes against the process memory ceiling.
//
// # GOMEMLIMIT
//
// Go does not derive GOMEMLIMIT from the container's cgroup limit, so
// [ConfigureFromEnv] does it from environment variables. Call it first in
// main, before significant allocations:
//
//	result := memory.ConfigureFromEnv()
//
// Environment variables:
//
//   - GOMEMLIMIT: standard Go variable, read by the runtime at startup.
//     When present it wins and is only reported.
//
//   - MEMORY_LIMIT: container memory limit in bytes, typically injected
//     with the Kubernetes Downward API:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap (default
//     0.80). libvips allocates through CGO, outside the Go heap, so heavy
//     thumbnailing wants a lower ratio than a pure Go service.
//
// # Decode budget
//
// A [Budget] is a fixed fraction (25%) of the process memory ceiling.
// Resize backends estimate the decoded buffer as width × height × bytes per
// pixel and skip any image that does not fit:
//
//	budget := memory.NewBudget(result.Ceiling(cfg.MemoryCeiling))
//	if !budget.Allows(memory.Estimate(w, h, memory.DefaultBytesPerPixel)) {
//	    // fall through to the next backend
//	}
//
// The estimate is a heuristic. It does not account for codec working
// buffers or the extra frames of animated GIF and WebP files.
//
// # Heap backpressure
//
// A [Monitor] samples the Go heap against the same ceiling. Above the
// critical watermark (85%) a budget built with [Budget.WithMonitor] reports
// [Budget.UnderPressure] and every backend refuses to decode until the heap
// drops below the high watermark (70%).
package memory
