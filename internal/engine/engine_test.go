package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

func newTestEngine(t *testing.T, poolSize int, run RunnerFunc) *Engine {
	t.Helper()

	eng, err := New(Config{
		PoolSize: poolSize,
		Runner:   run,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(eng.Cleanup)
	return eng
}

func TestNew_RequiresFactoryOrRunner(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New without Factory or Runner should fail")
	}
}

func TestDefaultPoolSize_Capped(t *testing.T) {
	if got := DefaultPoolSize(); got < 1 || got > maxPoolSize {
		t.Errorf("DefaultPoolSize() = %d, want within [1, %d]", got, maxPoolSize)
	}
}

func TestEngine_Process_ScenarioA(t *testing.T) {
	// Tasks {A, B deps=[A], C deps=[A]}, pool size 2: waves [[A], [B, C]]
	// with B and C executing concurrently in wave 2.
	var active, maxActive atomic.Int64

	eng := newTestEngine(t, 2, func(task *models.Task) (interface{}, error) {
		cur := active.Add(1)
		defer active.Add(-1)
		for {
			prev := maxActive.Load()
			if cur <= prev || maxActive.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		return task.ID, nil
	})

	tasks := []*models.Task{
		{ID: "A"},
		{ID: "B", DependsOn: []string{"A"}},
		{ID: "C", DependsOn: []string{"A"}},
	}

	batch := eng.Process(context.Background(), tasks)

	if batch.Waves != 2 {
		t.Errorf("Waves = %d, want 2", batch.Waves)
	}
	if len(batch.Results) != 3 {
		t.Fatalf("Results = %d entries, want 3", len(batch.Results))
	}
	got := []string{batch.Results[0].TaskID, batch.Results[1].TaskID, batch.Results[2].TaskID}
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result order = %v, want %v", got, want)
			break
		}
	}
	if maxActive.Load() < 2 {
		t.Errorf("max concurrency = %d, want B and C concurrent (>= 2)", maxActive.Load())
	}
}

func TestEngine_Process_CycleStillCompletes(t *testing.T) {
	// Scenario B: {X deps=[Y], Y deps=[X]}, pool size 1: two singleton
	// waves, both tasks execute, no error raised.
	eng := newTestEngine(t, 1, func(task *models.Task) (interface{}, error) {
		return task.ID, nil
	})

	tasks := []*models.Task{
		{ID: "X", DependsOn: []string{"Y"}},
		{ID: "Y", DependsOn: []string{"X"}},
	}

	batch := eng.Process(context.Background(), tasks)

	if batch.Waves != 2 {
		t.Errorf("Waves = %d, want 2", batch.Waves)
	}
	if len(batch.Successful()) != 2 {
		t.Errorf("Successful() = %d, want 2", len(batch.Successful()))
	}
}

func TestEngine_Process_PartialFailure(t *testing.T) {
	// A failing task is excluded from the successes without aborting the
	// rest of the batch.
	wantErr := errors.New("boom")
	eng := newTestEngine(t, 2, func(task *models.Task) (interface{}, error) {
		if task.ID == "bad" {
			return nil, wantErr
		}
		return task.ID, nil
	})

	tasks := []*models.Task{
		{ID: "good1"},
		{ID: "bad"},
		{ID: "good2"},
	}

	batch := eng.Process(context.Background(), tasks)

	if len(batch.Results) != 3 {
		t.Fatalf("Results = %d entries, want 3 (full per-task visibility)", len(batch.Results))
	}
	succ := batch.Successful()
	if len(succ) != 2 {
		t.Fatalf("Successful() = %d, want 2", len(succ))
	}
	failed := batch.Failed()
	if len(failed) != 1 || failed[0].TaskID != "bad" {
		t.Fatalf("Failed() = %v, want [bad]", failed)
	}
	if !errors.Is(failed[0].Err, wantErr) {
		t.Errorf("failed Err = %v, want %v", failed[0].Err, wantErr)
	}

	if tasks[1].Status != models.TaskStatusFailed {
		t.Errorf("bad task status = %s, want failed", tasks[1].Status)
	}
	if tasks[0].Status != models.TaskStatusDone {
		t.Errorf("good1 status = %s, want done", tasks[0].Status)
	}
}

func TestEngine_Process_FailedDependencyDoesNotAbortDependents(t *testing.T) {
	// Wave ordering is a scheduling guarantee, not a success gate: a
	// dependent still runs in its later wave even if the dependency
	// failed (best-effort batch semantics).
	eng := newTestEngine(t, 1, func(task *models.Task) (interface{}, error) {
		if task.ID == "parent" {
			return nil, errors.New("parent failed")
		}
		return task.ID, nil
	})

	tasks := []*models.Task{
		{ID: "parent"},
		{ID: "child", DependsOn: []string{"parent"}},
	}

	batch := eng.Process(context.Background(), tasks)
	succ := batch.Successful()
	if len(succ) != 1 || succ[0].TaskID != "child" {
		t.Errorf("Successful() = %v, want [child]", succ)
	}
}

func TestEngine_Process_MoreTasksThanWorkers(t *testing.T) {
	// Tasks beyond pool capacity queue transparently inside Acquire.
	var calls atomic.Int64
	eng := newTestEngine(t, 2, func(task *models.Task) (interface{}, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return task.ID, nil
	})

	var tasks []*models.Task
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tasks = append(tasks, &models.Task{ID: id})
	}

	batch := eng.Process(context.Background(), tasks)

	if calls.Load() != 7 {
		t.Errorf("runner calls = %d, want 7", calls.Load())
	}
	if len(batch.Successful()) != 7 {
		t.Errorf("Successful() = %d, want 7", len(batch.Successful()))
	}
	if batch.Waves != 1 {
		t.Errorf("Waves = %d, want 1", batch.Waves)
	}
}

func TestEngine_Process_EmptyBatch(t *testing.T) {
	eng := newTestEngine(t, 1, func(task *models.Task) (interface{}, error) {
		return nil, nil
	})

	batch := eng.Process(context.Background(), nil)
	if len(batch.Results) != 0 || batch.Waves != 0 {
		t.Errorf("empty batch = %+v, want no results and no waves", batch)
	}
}

func TestEngine_Process_GCBetweenWaves(t *testing.T) {
	eng, err := New(Config{
		PoolSize:       1,
		GCBetweenWaves: true,
		Runner: func(task *models.Task) (interface{}, error) {
			return task.ID, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer eng.Cleanup()

	tasks := []*models.Task{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
	}

	batch := eng.Process(context.Background(), tasks)
	if len(batch.Successful()) != 2 {
		t.Errorf("Successful() = %d, want 2", len(batch.Successful()))
	}
}

func TestEngine_Events(t *testing.T) {
	eng := newTestEngine(t, 1, func(task *models.Task) (interface{}, error) {
		if task.ID == "bad" {
			return nil, errors.New("boom")
		}
		return task.ID, nil
	})

	tasks := []*models.Task{
		{ID: "ok"},
		{ID: "bad"},
	}

	_ = eng.Process(context.Background(), tasks)

	counts := make(map[EventType]int)
drain:
	for {
		select {
		case ev := <-eng.Events():
			counts[ev.Type]++
			if ev.Type == EventBatchDone {
				break drain
			}
		case <-time.After(time.Second):
			t.Fatal("timed out draining events")
		}
	}

	if counts[EventWaveStarted] != 1 {
		t.Errorf("wave_started events = %d, want 1", counts[EventWaveStarted])
	}
	if counts[EventTaskStarted] != 2 {
		t.Errorf("task_started events = %d, want 2", counts[EventTaskStarted])
	}
	if counts[EventTaskCompleted] != 1 {
		t.Errorf("task_completed events = %d, want 1", counts[EventTaskCompleted])
	}
	if counts[EventTaskFailed] != 1 {
		t.Errorf("task_failed events = %d, want 1", counts[EventTaskFailed])
	}
}

func TestEngine_Stats(t *testing.T) {
	eng := newTestEngine(t, 3, func(task *models.Task) (interface{}, error) {
		return nil, nil
	})

	stats := eng.Stats()
	if stats.PoolSize != 3 {
		t.Errorf("PoolSize = %d, want 3", stats.PoolSize)
	}
	if stats.Available != 3 {
		t.Errorf("Available = %d, want 3", stats.Available)
	}
	if stats.MemoryBytes == 0 {
		t.Error("MemoryBytes should be populated")
	}
}

func TestEngine_CleanupIdempotent(t *testing.T) {
	eng := newTestEngine(t, 1, func(task *models.Task) (interface{}, error) {
		return nil, nil
	})

	eng.Cleanup()
	eng.Cleanup()
}

func TestEngine_MonitorBracketsWaves(t *testing.T) {
	mon := NewPerformanceMonitor()
	eng, err := New(Config{
		PoolSize: 1,
		Monitor:  mon,
		Runner: func(task *models.Task) (interface{}, error) {
			return task.ID, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer eng.Cleanup()

	tasks := []*models.Task{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
	}
	_ = eng.Process(context.Background(), tasks)

	summary := mon.Summary()
	names := make(map[string]bool)
	for _, s := range summary {
		names[s.Name] = true
	}
	for _, want := range []string{"engine.process", "engine.wave.0", "engine.wave.1"} {
		if !names[want] {
			t.Errorf("monitor missing span %q (got %v)", want, summary)
		}
	}
}
