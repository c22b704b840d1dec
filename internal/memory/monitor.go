package memory

import (
	"math"
	"runtime"
	"sync"
	"time"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/metrics"
)

// MonitorConfig holds the heap watermarks for a Monitor.
type MonitorConfig struct {
	// HighWaterMark is the share of the ceiling below which a critical
	// monitor recovers (0.0-1.0).
	HighWaterMark float64

	// CriticalWaterMark is the share at which new decodes are refused
	// (0.0-1.0).
	CriticalWaterMark float64

	// CheckInterval is how often the heap is sampled.
	CheckInterval time.Duration
}

// DefaultMonitorConfig returns the default watermarks.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples the Go heap against the process memory ceiling. Once the
// heap crosses the critical watermark the monitor stays critical until it
// falls back under the high watermark, so decodes are not admitted again on
// the first small dip.
type Monitor struct {
	config   MonitorConfig
	limit    int64
	readHeap func() uint64
	stopChan chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	current  uint64
	critical bool
}

// NewMonitor creates a monitor for ceiling. A ceiling of zero or less
// disables it: Start is a no-op and IsCritical is always false.
func NewMonitor(ceiling int64, config MonitorConfig) *Monitor {
	if ceiling <= 0 {
		logging.Warn("Memory monitor: no ceiling configured, heap backpressure disabled")
	}
	return &Monitor{
		config:   config,
		limit:    ceiling,
		readHeap: heapAlloc,
		stopChan: make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling in the background.
func (m *Monitor) Start() {
	if m == nil || m.limit <= 0 {
		return
	}
	m.checkMemory()
	go m.monitorLoop()
}

// Stop stops sampling. It is safe to call more than once.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	alloc := m.readHeap()
	usage := float64(alloc) / float64(m.limit)

	m.mu.Lock()
	m.current = alloc
	switch {
	case usage >= m.config.CriticalWaterMark && !m.critical:
		m.critical = true
		m.mu.Unlock()
		logging.Warn("Memory critical (%.1f%% of ceiling), refusing new decodes", usage*100)
		metrics.MemoryCritical.Set(1)
		metrics.MemoryCriticalEvents.Inc()
		go runtime.GC()
		return
	case usage < m.config.HighWaterMark && m.critical:
		m.critical = false
		m.mu.Unlock()
		logging.Info("Memory recovered (%.1f%% of ceiling), accepting decodes", usage*100)
		metrics.MemoryCritical.Set(0)
		return
	}
	m.mu.Unlock()
}

// IsCritical reports whether the heap is above the critical watermark.
func (m *Monitor) IsCritical() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.critical
}

// GetStats returns the last heap sample, the ceiling and their ratio.
func (m *Monitor) GetStats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	current = math.MaxInt64
	if m.current <= math.MaxInt64 {
		current = int64(m.current)
	}
	if m.limit > 0 {
		usage = float64(m.current) / float64(m.limit)
	}
	return current, m.limit, usage
}
