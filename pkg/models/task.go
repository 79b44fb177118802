package models

import "time"

// TaskStatus represents the current state of a generation task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is being executed by a worker.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusDone indicates the task completed successfully.
	TaskStatusDone TaskStatus = "done"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusDone, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// DefaultTaskTimeout bounds the wait for a worker response when a task
// does not specify its own timeout.
const DefaultTaskTimeout = 30 * time.Second

// Task is a unit of artifact-generation work scheduled by the engine.
// The engine only looks at ID, DependsOn, Priority, and Timeout; the
// payload is passed through to the worker untouched.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Kind labels the artifact this task produces (e.g. "tm-grammar").
	Kind string `json:"kind"`
	// Payload is the opaque work description handed to the worker.
	Payload interface{} `json:"-"`
	// DependsOn lists task IDs that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty"`
	// Priority orders tasks within the grouper; higher runs earlier.
	Priority int `json:"priority"`
	// Timeout bounds the wait for a worker response. Zero means
	// DefaultTaskTimeout.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Retries is accepted for forward compatibility but does not
	// trigger re-dispatch.
	Retries int `json:"retries,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
}

// EffectiveTimeout returns the task timeout, falling back to the default.
func (t *Task) EffectiveTimeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return DefaultTaskTimeout
}

// TaskResult captures the terminal outcome of one task execution.
// Exactly one of Result and Err is meaningful.
type TaskResult struct {
	// TaskID is the ID of the executed task.
	TaskID string `json:"task_id"`
	// Result is the worker's success payload, nil on failure.
	Result interface{} `json:"-"`
	// Err is the captured failure, nil on success.
	Err error `json:"-"`
	// Duration is the wall-clock time from acquire to completion.
	Duration time.Duration `json:"duration"`
	// MemoryBytes is the heap-allocated bytes observed at completion.
	MemoryBytes uint64 `json:"memory_bytes"`
}

// OK returns true if the task produced a result.
func (r TaskResult) OK() bool {
	return r.Err == nil
}
