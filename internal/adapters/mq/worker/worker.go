// Package worker runs the ranking recompute workers.
package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/skatium/heatline/internal/adapters/mq/queue"
	"github.com/skatium/heatline/pkg/logger"
	"github.com/skatium/heatline/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Recomputer recomputes and persists one scope's standings.
type Recomputer interface {
	Recompute(ctx context.Context, job queue.Job) error
}

// Source is how workers receive jobs.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker drains recompute jobs until stopped.
type Worker struct {
	source     Source
	recomputer Recomputer
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a worker draining source into recomputer.
func New(source Source, recomputer Recomputer, opts ...Option) *Worker {
	w := &Worker{
		source:     source,
		recomputer: recomputer,
		name:       "recompute",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the context is canceled, the worker is shut down,
// or the source closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	err := w.recomputer.Recompute(ctx, job)
	metrics.RecordRankingRecomputeDuration(float64(time.Since(start).Milliseconds()))

	if err != nil {
		// Recomputation is idempotent; the next dirtying of the scope
		// retries naturally.
		w.logger.Error(ctx, "ranking recompute failed",
			logger.String("contestID", job.Scope.ContestID),
			logger.String("categoryID", job.Scope.CategoryID),
			logger.String("phase", string(job.Scope.Phase)),
			logger.Error(err),
		)
		return
	}
	metrics.RecordRankingRecompute()
}

// Shutdown stops the worker, waiting up to the context deadline.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "worker shutdown timed out")
		return ctx.Err()
	}
}

// Pool manages a set of workers over one queue.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workerCount workers draining source into recomputer.
func NewPool(workerCount int, source Source, recomputer Recomputer) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("recompute-pool"),
	}
	for i := range p.workers {
		p.workers[i] = New(source, recomputer, WithName("recompute-"+strconv.Itoa(i)))
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop shuts every worker down, bounded per worker.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		_ = w.Shutdown(ctx)
		cancel()
	}
}
