package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

// maxPoolSize caps the default pool size regardless of how many CPUs the
// host reports.
const maxPoolSize = 8

// DefaultPoolSize returns the hardware-parallelism hint capped at
// maxPoolSize, never below 1.
func DefaultPoolSize() int {
	n := runtime.NumCPU()
	if n > maxPoolSize {
		n = maxPoolSize
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Config contains configuration options for the Engine.
type Config struct {
	// PoolSize is the number of workers. Zero means DefaultPoolSize.
	PoolSize int
	// DefaultTimeout bounds tasks without their own timeout.
	// Zero means models.DefaultTaskTimeout.
	DefaultTimeout time.Duration
	// GCBetweenWaves hints the runtime to reclaim memory between waves.
	GCBetweenWaves bool
	// EventBuffer is the event channel capacity. Zero means 100.
	EventBuffer int
	// Monitor brackets batch and wave execution with timing spans.
	// Nil means no monitoring.
	Monitor Monitor
	// Logger receives debug output. Nil means no debug logging.
	Logger *DebugLogger
	// Factory creates workers. Required unless Runner is set.
	Factory WorkerFactory
	// Runner is a convenience for Factory: when Factory is nil, workers
	// are in-process goroutines executing Runner.
	Runner RunnerFunc
}

// Engine sequences dependency waves over the worker pool and aggregates
// per-task results. It is the single entry point callers drive a
// generation batch through.
type Engine struct {
	cfg      Config
	pool     *WorkerPool
	executor *TaskExecutor
	emitter  *EventEmitter
	monitor  Monitor

	cleanupOnce sync.Once
}

// New creates an Engine from the given config.
// Returns an error if neither Factory nor Runner is provided.
func New(cfg Config) (*Engine, error) {
	factory := cfg.Factory
	if factory == nil {
		if cfg.Runner == nil {
			return nil, fmt.Errorf("engine: either Factory or Runner is required")
		}
		factory = InprocFactory(cfg.Runner)
	}

	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 100
	}
	if cfg.Monitor == nil {
		cfg.Monitor = NopMonitor{}
	}

	setPackageLogger(cfg.Logger)

	pool := NewWorkerPool(cfg.PoolSize, factory)

	return &Engine{
		cfg:      cfg,
		pool:     pool,
		executor: NewTaskExecutor(pool, cfg.DefaultTimeout),
		emitter:  NewEventEmitter(cfg.EventBuffer),
		monitor:  cfg.Monitor,
	}, nil
}

// BatchResult holds the outcome of one generation batch: every task's
// terminal result, in wave order and, within a wave, submission order.
type BatchResult struct {
	// Results contains one entry per submitted task.
	Results []models.TaskResult
	// Waves is the number of dependency waves executed.
	Waves int
}

// Successful returns the results of tasks that produced an artifact,
// preserving order.
func (b *BatchResult) Successful() []models.TaskResult {
	var out []models.TaskResult
	for _, r := range b.Results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the results of tasks that did not complete, preserving
// order.
func (b *BatchResult) Failed() []models.TaskResult {
	var out []models.TaskResult
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Process runs a full generation batch: tasks are grouped into dependency
// waves, each wave runs concurrently over the pool, and wave k+1 starts
// only after every task in wave k reached a terminal result. Failing
// tasks are captured in the batch result without aborting the run.
func (e *Engine) Process(ctx context.Context, tasks []*models.Task) *BatchResult {
	endBatch := e.monitor.StartOperation("engine.process")
	defer endBatch()

	waves := GroupByDependency(tasks)
	batch := &BatchResult{
		Results: make([]models.TaskResult, 0, len(tasks)),
		Waves:   len(waves),
	}

	for i, wave := range waves {
		e.emitter.Emit(Event{
			Type:      EventWaveStarted,
			Wave:      i,
			WaveSize:  len(wave),
			Message:   fmt.Sprintf("wave %d/%d: %d tasks", i+1, len(waves), len(wave)),
			Timestamp: time.Now(),
		})

		results := e.runWave(ctx, i, wave)
		batch.Results = append(batch.Results, results...)

		e.emitter.Emit(Event{
			Type:      EventWaveCompleted,
			Wave:      i,
			WaveSize:  len(wave),
			Timestamp: time.Now(),
		})

		if e.cfg.GCBetweenWaves && i < len(waves)-1 {
			debugLog("[engine] hinting GC after wave %d", i)
			runtime.GC()
		}
	}

	e.emitter.Emit(Event{
		Type:      EventBatchDone,
		Message:   fmt.Sprintf("%d/%d tasks succeeded", len(batch.Successful()), len(tasks)),
		Timestamp: time.Now(),
	})

	return batch
}

// runWave executes every task in the wave concurrently and waits for all
// of them. Tasks beyond the pool's capacity queue transparently inside
// Acquire. Results come back in submission order, not completion order.
func (e *Engine) runWave(ctx context.Context, index int, wave []*models.Task) []models.TaskResult {
	endWave := e.monitor.StartOperation(fmt.Sprintf("engine.wave.%d", index))
	defer endWave()

	results := make([]models.TaskResult, len(wave))
	var wg sync.WaitGroup

	for i, task := range wave {
		wg.Add(1)
		go func(i int, task *models.Task) {
			defer wg.Done()

			task.Status = models.TaskStatusRunning
			e.emitter.Emit(Event{
				Type:      EventTaskStarted,
				TaskID:    task.ID,
				TaskKind:  task.Kind,
				Wave:      index,
				Timestamp: time.Now(),
			})

			res := e.executor.Execute(ctx, task)
			results[i] = res

			if res.OK() {
				task.Status = models.TaskStatusDone
				e.emitter.Emit(Event{
					Type:      EventTaskCompleted,
					TaskID:    task.ID,
					TaskKind:  task.Kind,
					Wave:      index,
					Duration:  res.Duration,
					Timestamp: time.Now(),
				})
			} else {
				task.Status = models.TaskStatusFailed
				debugLog("[engine] task %s failed: %v", task.ID, res.Err)
				e.emitter.Emit(Event{
					Type:      EventTaskFailed,
					TaskID:    task.ID,
					TaskKind:  task.Kind,
					Wave:      index,
					Error:     res.Err,
					Duration:  res.Duration,
					Timestamp: time.Now(),
				})
			}
		}(i, task)
	}

	wg.Wait()
	return results
}

// Stats returns a point-in-time health snapshot of the engine.
func (e *Engine) Stats() models.EngineStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return models.EngineStats{
		PoolSize:    e.pool.Size(),
		Available:   e.pool.AvailableCount(),
		MemoryBytes: ms.HeapAlloc,
	}
}

// Events returns the channel for receiving engine events.
func (e *Engine) Events() <-chan Event {
	return e.emitter.Events()
}

// DroppedEventCount returns the number of events dropped under load.
func (e *Engine) DroppedEventCount() uint64 {
	return e.emitter.DroppedCount()
}

// Cleanup destroys the pool and closes the event channel.
// Callers must not Process after Cleanup. Safe to call more than once.
func (e *Engine) Cleanup() {
	e.cleanupOnce.Do(func() {
		e.pool.Destroy()
		e.emitter.Close()
	})
}
