// Package queue provides a coalescing job queue for ranking recomputation.
//
// Every score submission and heat completion wants the same thing: fresh
// standings for its scope. Recomputation is a pure function of the score
// state, so pending jobs for the same scope collapse into one; the queue
// only tracks which scopes are dirty.
package queue

import (
	"context"
	"sync"

	"github.com/skatium/heatline/internal/domain/model"
	"github.com/skatium/heatline/pkg/metrics"
)

// Job asks for one scope's rankings to be recomputed.
type Job struct {
	Scope model.Scope
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue marks a scope dirty. Returns false when the queue is full or
	// closed; a scope already pending coalesces and reports success.
	Enqueue(ctx context.Context, job Job) bool

	// Dequeue returns a channel delivering jobs as they become available.
	// The channel closes when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the number of pending jobs.
	Len(ctx context.Context) int

	// Close stops the queue. Pending jobs are still delivered.
	Close() error
}

const defaultCapacity = 1024

// CoalescingQueue implements Queue over a buffered channel plus a pending
// set keyed by scope.
type CoalescingQueue struct {
	jobs     chan Job
	capacity int

	mu      sync.Mutex
	pending map[model.Scope]struct{}
	closed  bool
}

// Option applies a configuration option to the CoalescingQueue.
type Option func(*CoalescingQueue)

// WithCapacity bounds the number of distinct pending scopes.
func WithCapacity(capacity int) Option {
	return func(q *CoalescingQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewCoalescingQueue creates a queue with the given options.
func NewCoalescingQueue(opts ...Option) *CoalescingQueue {
	q := &CoalescingQueue{
		capacity: defaultCapacity,
		pending:  make(map[model.Scope]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateRecomputeQueueDepth(0)

	return q
}

// Enqueue marks a scope dirty.
func (q *CoalescingQueue) Enqueue(ctx context.Context, job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordRecomputeEnqueueDrop()
		return false
	}
	if _, dirty := q.pending[job.Scope]; dirty {
		metrics.RecordRecomputeCoalesced()
		return true
	}

	select {
	case q.jobs <- job:
		q.pending[job.Scope] = struct{}{}
		metrics.UpdateRecomputeQueueDepth(len(q.jobs))
		return true
	default:
		metrics.RecordRecomputeEnqueueDrop()
		return false
	}
}

// Dequeue returns a channel delivering jobs. Claiming a job clears its
// pending mark, so a scope dirtied again while a worker recomputes it is
// queued anew rather than lost.
func (q *CoalescingQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for job := range q.jobs {
			q.mu.Lock()
			delete(q.pending, job.Scope)
			metrics.UpdateRecomputeQueueDepth(len(q.jobs))
			q.mu.Unlock()

			select {
			case out <- job:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending jobs.
func (q *CoalescingQueue) Len(ctx context.Context) int {
	return len(q.jobs)
}

// Close stops the queue. Safe to call twice.
func (q *CoalescingQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.jobs)
	return nil
}
