// Package tasks provides a post-transaction task queue.
//
// Work that must not run while a mutation context is open (most notably
// user-facing warnings) is scheduled onto a Queue and executed when the host
// flushes it after the transaction closes. Tasks run in FIFO order. A task
// that panics is recovered and reported to the panic handler; the remaining
// tasks still run.
package tasks

import (
	"runtime/debug"
	"sync"
)

// PanicHandler is called with the recovered value and stack of a task.
type PanicHandler func(value any, stack []byte)

// Queue holds deferred tasks until Flush.
type Queue struct {
	mu           sync.Mutex
	pending      []func()
	panicHandler PanicHandler
	flushing     bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithPanicHandler sets the handler for panicking tasks.
func WithPanicHandler(h PanicHandler) Option {
	return func(q *Queue) {
		q.panicHandler = h
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Schedule appends fn to the queue. Nil functions are ignored.
func (q *Queue) Schedule(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs pending tasks in order and returns how many ran.
// Tasks scheduled while flushing run in the same flush. A Flush called from
// inside a task returns 0 immediately.
func (q *Queue) Flush() int {
	q.mu.Lock()
	if q.flushing {
		q.mu.Unlock()
		return 0
	}
	q.flushing = true
	q.mu.Unlock()

	ran := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.flushing = false
			q.mu.Unlock()
			return ran
		}
		fn := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.run(fn)
		ran++
	}
}

// Discard drops pending tasks without running them.
func (q *Queue) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	q.pending = nil
	return n
}

func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if q.panicHandler == nil {
				return
			}
			stack := debug.Stack()
			func() {
				defer func() { _ = recover() }()
				q.panicHandler(r, stack)
			}()
		}
	}()
	fn()
}
