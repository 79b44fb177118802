package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

// Response is the single terminal reply a worker produces for a dispatched
// task: success-with-result or error, never both, never partial.
type Response struct {
	// TaskID identifies the task this response belongs to. Executors use
	// it to discard late responses from previously abandoned waits.
	TaskID string
	// Result is the success payload.
	Result interface{}
	// Err is the worker-reported failure.
	Err error
}

// Worker is an isolated execution context that processes one task payload
// at a time. Implementations may be goroutines, subprocesses, or anything
// honoring the one-request/one-response protocol.
type Worker interface {
	// ID returns the worker's identifier, used for pool bookkeeping logs.
	ID() string
	// Send dispatches a task to the worker without waiting for the result.
	Send(task *models.Task) error
	// Responses returns the channel on which terminal responses arrive.
	Responses() <-chan Response
	// Faults returns the channel on which asynchronous context failures
	// unrelated to a specific task arrive.
	Faults() <-chan error
	// Terminate shuts the worker down. Any in-flight computation is
	// abandoned; Terminate does not wait for it.
	Terminate()
}

// WorkerFactory creates a fresh worker. The pool uses it both at
// initialization and when replacing a faulted worker.
type WorkerFactory func() Worker

// RunnerFunc is the worker-side entry point: it accepts one task payload
// and returns exactly one terminal result or error.
type RunnerFunc func(task *models.Task) (interface{}, error)

// InprocWorker runs tasks on a dedicated goroutine. The dispatch channel
// holds one pending task so a timed-out computation that is still running
// does not block the next dispatch to the same worker.
type InprocWorker struct {
	id        string
	run       RunnerFunc
	tasks     chan *models.Task
	responses chan Response
	faults    chan error
	quit      chan struct{}
	stop      sync.Once
}

// NewInprocWorker creates a goroutine-backed worker around the given
// runner and starts its processing loop.
func NewInprocWorker(run RunnerFunc) *InprocWorker {
	w := &InprocWorker{
		id:        uuid.New().String()[:8],
		run:       run,
		tasks:     make(chan *models.Task, 1),
		responses: make(chan Response, 1),
		faults:    make(chan error, 1),
		quit:      make(chan struct{}),
	}
	go w.loop()
	return w
}

// InprocFactory returns a WorkerFactory producing in-process workers that
// execute tasks through run.
func InprocFactory(run RunnerFunc) WorkerFactory {
	return func() Worker {
		return NewInprocWorker(run)
	}
}

// ID returns the worker's identifier.
func (w *InprocWorker) ID() string {
	return w.id
}

// Send dispatches a task to the worker.
func (w *InprocWorker) Send(task *models.Task) error {
	select {
	case <-w.quit:
		return fmt.Errorf("worker %s: %w", w.id, ErrWorkerTerminated)
	default:
	}

	select {
	case w.tasks <- task:
		return nil
	default:
		return fmt.Errorf("worker %s: %w", w.id, ErrWorkerBusy)
	}
}

// Responses returns the worker's response channel.
func (w *InprocWorker) Responses() <-chan Response {
	return w.responses
}

// Faults returns the worker's fault channel.
func (w *InprocWorker) Faults() <-chan error {
	return w.faults
}

// InjectFault raises an asynchronous worker fault, as if the underlying
// execution context crashed independently of any task.
func (w *InprocWorker) InjectFault(err error) {
	select {
	case w.faults <- err:
	default:
	}
}

// Terminate stops the worker's processing loop.
// Safe to call more than once.
func (w *InprocWorker) Terminate() {
	w.stop.Do(func() {
		close(w.quit)
	})
}

// loop processes dispatched tasks one at a time until terminated.
func (w *InprocWorker) loop() {
	for {
		select {
		case <-w.quit:
			return
		case task := <-w.tasks:
			resp := w.invoke(task)
			select {
			case w.responses <- resp:
			case <-w.quit:
				return
			}
		}
	}
}

// invoke runs a single task through the runner, converting panics into
// error responses so the worker goroutine survives bad payloads.
func (w *InprocWorker) invoke(task *models.Task) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				TaskID: task.ID,
				Err:    fmt.Errorf("worker %s: panic running task %s: %v", w.id, task.ID, r),
			}
		}
	}()

	result, err := w.run(task)
	return Response{TaskID: task.ID, Result: result, Err: err}
}
