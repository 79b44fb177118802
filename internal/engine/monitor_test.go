package engine

import (
	"sync"
	"testing"
	"time"
)

func TestPerformanceMonitor_RecordsSpans(t *testing.T) {
	mon := NewPerformanceMonitor()

	end := mon.StartOperation("op")
	time.Sleep(10 * time.Millisecond)
	end()

	summary := mon.Summary()
	if len(summary) != 1 {
		t.Fatalf("Summary() = %d entries, want 1", len(summary))
	}
	s := summary[0]
	if s.Name != "op" || s.Count != 1 {
		t.Errorf("span = %+v, want name=op count=1", s)
	}
	if s.Total < 10*time.Millisecond {
		t.Errorf("Total = %v, want >= 10ms", s.Total)
	}
	if s.Max != s.Total {
		t.Errorf("single span Max = %v, want %v", s.Max, s.Total)
	}
}

func TestPerformanceMonitor_AggregatesByName(t *testing.T) {
	mon := NewPerformanceMonitor()

	for i := 0; i < 3; i++ {
		mon.StartOperation("repeat")()
	}
	mon.StartOperation("other")()

	summary := mon.Summary()
	if len(summary) != 2 {
		t.Fatalf("Summary() = %d entries, want 2", len(summary))
	}
	// Sorted by name: other, repeat.
	if summary[0].Name != "other" || summary[1].Name != "repeat" {
		t.Errorf("summary order = [%s, %s], want [other, repeat]", summary[0].Name, summary[1].Name)
	}
	if summary[1].Count != 3 {
		t.Errorf("repeat Count = %d, want 3", summary[1].Count)
	}
}

func TestPerformanceMonitor_ConcurrentSpans(t *testing.T) {
	mon := NewPerformanceMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mon.StartOperation("parallel")()
		}()
	}
	wg.Wait()

	summary := mon.Summary()
	if len(summary) != 1 || summary[0].Count != 20 {
		t.Errorf("Summary() = %+v, want single span with Count=20", summary)
	}
}

func TestNopMonitor(t *testing.T) {
	var m Monitor = NopMonitor{}
	end := m.StartOperation("anything")
	end() // must not panic
}
