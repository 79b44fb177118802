package engine

import "errors"

// ErrTaskTimeout indicates no terminal worker response arrived within the
// task's timeout. The wait is abandoned; the worker's computation is not
// interrupted.
var ErrTaskTimeout = errors.New("task timed out")

// ErrWorkerFault indicates a worker raised an asynchronous error not tied
// to a specific task. The pool replaces the worker; the task that was
// using it fails with this error.
var ErrWorkerFault = errors.New("worker fault")

// ErrWorkerBusy indicates a dispatch was attempted on a worker that
// cannot accept another task.
var ErrWorkerBusy = errors.New("worker busy")

// ErrWorkerTerminated indicates a dispatch was attempted on a worker that
// has been shut down.
var ErrWorkerTerminated = errors.New("worker terminated")

// ErrPoolDestroyed indicates an acquire was attempted on a destroyed pool.
var ErrPoolDestroyed = errors.New("worker pool destroyed")
