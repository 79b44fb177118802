package engine

import (
	"sort"
	"sync"
	"time"
)

// Monitor brackets engine operations with timing spans. Implementations
// are purely observational; they have no effect on scheduling.
type Monitor interface {
	// StartOperation begins a named span and returns the callback that
	// ends it.
	StartOperation(name string) func()
}

// NopMonitor discards all spans.
type NopMonitor struct{}

// StartOperation returns a no-op end callback.
func (NopMonitor) StartOperation(string) func() {
	return func() {}
}

// OperationStats aggregates the recorded spans for one operation name.
type OperationStats struct {
	// Name is the operation name passed to StartOperation.
	Name string
	// Count is the number of completed spans.
	Count int
	// Total is the summed duration across all spans.
	Total time.Duration
	// Max is the longest single span.
	Max time.Duration
}

// PerformanceMonitor records named timing spans in memory.
type PerformanceMonitor struct {
	mu    sync.Mutex
	stats map[string]*OperationStats
}

// NewPerformanceMonitor creates an empty PerformanceMonitor.
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		stats: make(map[string]*OperationStats),
	}
}

// StartOperation begins a span; the returned callback records it.
// The callback is safe to call exactly once from any goroutine.
func (m *PerformanceMonitor) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		m.record(name, time.Since(start))
	}
}

func (m *PerformanceMonitor) record(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[name]
	if !ok {
		s = &OperationStats{Name: name}
		m.stats[name] = s
	}
	s.Count++
	s.Total += d
	if d > s.Max {
		s.Max = d
	}
}

// Summary returns a snapshot of all recorded operations, sorted by name.
func (m *PerformanceMonitor) Summary() []OperationStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]OperationStats, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
