package engine

import "time"

// EventType represents the type of engine event.
type EventType string

const (
	// EventTaskStarted indicates a task has started execution.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventWaveStarted indicates a dependency wave has started.
	EventWaveStarted EventType = "wave_started"
	// EventWaveCompleted indicates a dependency wave has finished.
	EventWaveCompleted EventType = "wave_completed"
	// EventBatchDone indicates the entire batch is complete.
	EventBatchDone EventType = "batch_done"
)

// Event represents an event emitted by the engine during a batch.
// These events are used to drive the progress UI.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// TaskKind is the artifact kind of the related task, if applicable.
	TaskKind string
	// Wave is the zero-based wave index, if applicable.
	Wave int
	// WaveSize is the number of tasks in the wave, for wave events.
	WaveSize int
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Duration is the elapsed time for completion events.
	Duration time.Duration
}
