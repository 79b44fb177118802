package engine

import (
	"context"
	"sync"
)

// WorkerPool owns a fixed number of workers and serializes access to them.
// Acquire hands out idle workers immediately and queues callers FIFO when
// the pool is exhausted; Release hands a worker directly to the oldest
// waiter so no idle gap occurs under demand. Faulted workers are replaced
// in place, keeping available+busy equal to the pool size.
type WorkerPool struct {
	mu      sync.Mutex
	factory WorkerFactory

	// slots holds every worker the pool owns, busy or idle.
	slots []Worker
	// available holds idle workers, handed out front-first.
	available []Worker
	// waiters is the FIFO queue of pending Acquire calls.
	waiters []*waiter
	// replaced maps faulted busy workers to their replacements so the
	// eventual Release returns the replacement to circulation.
	replaced map[Worker]Worker

	destroyed bool
}

// waiter is one pending Acquire. The channel is buffered so Release can
// hand off without blocking under the pool lock.
type waiter struct {
	ch chan Worker
}

// NewWorkerPool creates a pool of n workers, eagerly constructed through
// the factory and all available. n is clamped to at least 1.
func NewWorkerPool(n int, factory WorkerFactory) *WorkerPool {
	if n < 1 {
		n = 1
	}

	p := &WorkerPool{
		factory:  factory,
		slots:    make([]Worker, 0, n),
		replaced: make(map[Worker]Worker),
	}

	for i := 0; i < n; i++ {
		w := factory()
		p.slots = append(p.slots, w)
		p.available = append(p.available, w)
	}

	debugLog("[pool] initialized with %d workers", n)
	return p
}

// Acquire returns an idle worker, suspending FIFO when none is available.
// It fails only when the context is cancelled or the pool is destroyed;
// waiters queued at destruction time never resolve through the pool.
func (p *WorkerPool) Acquire(ctx context.Context) (Worker, error) {
	p.mu.Lock()

	if p.destroyed {
		p.mu.Unlock()
		return nil, ErrPoolDestroyed
	}

	if len(p.available) > 0 {
		w := p.available[0]
		p.available = p.available[1:]
		p.mu.Unlock()
		return w, nil
	}

	wt := &waiter{ch: make(chan Worker, 1)}
	p.waiters = append(p.waiters, wt)
	debugLog("[pool] exhausted, queued waiter (%d waiting)", len(p.waiters))
	p.mu.Unlock()

	select {
	case w := <-wt.ch:
		return w, nil
	case <-ctx.Done():
	}

	// Cancelled. If the waiter is still queued, withdraw it. Otherwise a
	// Release already handed us a worker; put it back so it isn't lost.
	p.mu.Lock()
	for i, q := range p.waiters {
		if q == wt {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			p.mu.Unlock()
			return nil, ctx.Err()
		}
	}
	p.mu.Unlock()

	w := <-wt.ch
	p.Release(w)
	return nil, ctx.Err()
}

// Release returns a worker to the pool. If a waiter is queued, the worker
// is handed directly to the oldest one, bypassing the available list. A
// handle that was replaced during fault-healing releases its replacement.
func (p *WorkerPool) Release(w Worker) {
	if w == nil {
		return
	}

	p.mu.Lock()

	if repl, ok := p.replaced[w]; ok {
		delete(p.replaced, w)
		debugLog("[pool] release of faulted worker %s redirected to replacement %s", w.ID(), repl.ID())
		w = repl
	}

	if p.destroyed {
		p.mu.Unlock()
		w.Terminate()
		return
	}

	if len(p.waiters) > 0 {
		wt := p.waiters[0]
		p.waiters = p.waiters[1:]
		wt.ch <- w
		p.mu.Unlock()
		return
	}

	p.available = append(p.available, w)
	p.mu.Unlock()
}

// HandleFault terminates a faulted worker and installs a fresh one in its
// slot. Idle workers are swapped inside the available list; busy workers
// are repaired when their handle is eventually released. Unknown handles
// are ignored.
func (p *WorkerPool) HandleFault(w Worker) {
	if w == nil {
		return
	}

	p.mu.Lock()

	if p.destroyed {
		p.mu.Unlock()
		w.Terminate()
		return
	}

	slot := -1
	for i, s := range p.slots {
		if s == w {
			slot = i
			break
		}
	}
	if slot < 0 {
		// Already replaced or never ours.
		p.mu.Unlock()
		return
	}

	replacement := p.factory()
	p.slots[slot] = replacement

	swapped := false
	for i, a := range p.available {
		if a == w {
			p.available[i] = replacement
			swapped = true
			break
		}
	}
	if !swapped {
		p.replaced[w] = replacement
	}

	debugLog("[pool] replaced faulted worker %s with %s (idle=%v)", w.ID(), replacement.ID(), swapped)
	p.mu.Unlock()

	w.Terminate()
}

// Size returns the total number of workers the pool owns.
func (p *WorkerPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// AvailableCount returns the number of idle workers.
func (p *WorkerPool) AvailableCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

// Destroy terminates every worker and clears pool state. Queued waiters
// never resolve; callers must drain in-flight work before destroying.
// Safe to call more than once.
func (p *WorkerPool) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true

	// Replacements installed by HandleFault live in slots, so terminating
	// the slots covers them too.
	workers := make([]Worker, len(p.slots))
	copy(workers, p.slots)

	p.available = nil
	p.waiters = nil
	p.replaced = make(map[Worker]Worker)
	p.mu.Unlock()

	for _, w := range workers {
		w.Terminate()
	}

	debugLog("[pool] destroyed %d workers", len(workers))
}
