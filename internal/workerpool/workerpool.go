// Package workerpool provides a fixed-size pool of goroutines for CPU-bound
// work submitted from session goroutines. The task queue is bounded at the
// worker count; when every worker is busy and the queue is full, Submit
// blocks the caller, which backpressures the submitting session instead of
// growing memory without bound.
package workerpool

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("workerpool: pool is closed")

// Task is one unit of CPU-bound work. Tasks must not panic; the compute
// functions run here are total over integer input.
type Task func() any

type job struct {
	run    Task
	result chan any
}

type Pool struct {
	tasks chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts workers goroutines draining a queue of the same capacity.
// A non-positive worker count is clamped to one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{tasks: make(chan job, workers)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.tasks {
		j.result <- j.run()
	}
}

// Submit queues fn and blocks until a worker has run it, returning the
// task's result. Returns ErrClosed once Close has begun.
func (p *Pool) Submit(fn Task) (any, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrClosed
	}
	j := job{run: fn, result: make(chan any, 1)}
	p.tasks <- j
	p.mu.RUnlock()
	return <-j.result, nil
}

// Close stops intake and waits for queued and in-flight tasks to finish.
// Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
