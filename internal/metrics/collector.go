package metrics

import (
	"runtime"
	"time"

	"photo-gallery/internal/logging"
)

// Collector periodically samples Go runtime memory against the process
// memory ceiling.
type Collector struct {
	ceiling  int64
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a collector. A ceiling of zero leaves the usage ratio
// unset.
func NewCollector(ceiling int64, interval time.Duration) *Collector {
	MemoryCeilingBytes.Set(float64(ceiling))
	return &Collector{
		ceiling:  ceiling,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	GoMemAllocBytes.Set(float64(stats.Alloc))
	GoMemSysBytes.Set(float64(stats.Sys))

	ratio := 0.0
	if c.ceiling > 0 {
		ratio = float64(stats.Sys) / float64(c.ceiling)
	}
	MemoryUsageRatio.Set(ratio)
	LogLinesDropped.Set(float64(logging.Dropped()))

	logging.Debug("Metrics collected: alloc=%.1f MB, sys=%.1f MB, ceiling ratio=%.2f",
		float64(stats.Alloc)/(1024*1024), float64(stats.Sys)/(1024*1024), ratio)
}
