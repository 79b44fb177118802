package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

// TaskExecutor drives one task through acquire, dispatch, bounded wait,
// and release. Execute never panics and never returns an error value;
// every failure is captured inside the TaskResult.
type TaskExecutor struct {
	pool *WorkerPool
	// defaultTimeout bounds tasks that carry no timeout of their own.
	defaultTimeout time.Duration
}

// NewTaskExecutor creates an executor over the given pool. A
// non-positive defaultTimeout falls back to models.DefaultTaskTimeout.
func NewTaskExecutor(pool *WorkerPool, defaultTimeout time.Duration) *TaskExecutor {
	if defaultTimeout <= 0 {
		defaultTimeout = models.DefaultTaskTimeout
	}
	return &TaskExecutor{
		pool:           pool,
		defaultTimeout: defaultTimeout,
	}
}

// Execute runs a single task to a terminal result. The worker is released
// unconditionally, whatever the outcome, so the pool never leaks a handle.
// A timeout abandons the wait only; the worker's ongoing computation keeps
// its context busy until it finishes.
func (e *TaskExecutor) Execute(ctx context.Context, task *models.Task) models.TaskResult {
	start := time.Now()
	result := models.TaskResult{TaskID: task.ID}

	w, err := e.pool.Acquire(ctx)
	if err != nil {
		result.Err = fmt.Errorf("acquire worker for task %s: %w", task.ID, err)
		return e.finish(result, start)
	}
	defer e.pool.Release(w)

	if err := w.Send(task); err != nil {
		result.Err = fmt.Errorf("dispatch task %s: %w", task.ID, err)
		return e.finish(result, start)
	}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

wait:
	for {
		select {
		case resp := <-w.Responses():
			if resp.TaskID != task.ID {
				// Late response from a previously abandoned wait on
				// this worker; discard and keep waiting for ours.
				debugLog("[executor] discarding stale response for task %s while waiting on %s", resp.TaskID, task.ID)
				continue
			}
			result.Result = resp.Result
			result.Err = resp.Err
			break wait

		case faultErr := <-w.Faults():
			e.pool.HandleFault(w)
			result.Err = fmt.Errorf("task %s: %w: %v", task.ID, ErrWorkerFault, faultErr)
			break wait

		case <-timer.C:
			result.Err = fmt.Errorf("task %s after %s: %w", task.ID, timeout, ErrTaskTimeout)
			break wait

		case <-ctx.Done():
			result.Err = fmt.Errorf("task %s: %w", task.ID, ctx.Err())
			break wait
		}
	}

	return e.finish(result, start)
}

// finish stamps duration and a memory snapshot onto the result.
func (e *TaskExecutor) finish(result models.TaskResult, start time.Time) models.TaskResult {
	result.Duration = time.Since(start)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	result.MemoryBytes = ms.HeapAlloc

	return result
}
