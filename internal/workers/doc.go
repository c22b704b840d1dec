/*
Package workers sizes worker pools from the CPUs actually available to the
process.

runtime.NumCPU reports the host's CPUs, while GOMAXPROCS follows the
container CPU limit, so a pod limited to 2 CPUs on a 64-core node gets 2
workers for CPU-bound work instead of 64:

	g.SetLimit(workers.ForIO(16)) // 4 on a 2-CPU pod, never more than 16

Operators can pin the count with GALLERY_WORKERS; the caller's limit still
applies.
*/
package workers
