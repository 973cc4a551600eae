// Package worker drains the feedback queue, one worker per shard.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/mentorlink/internal/adapters/mq/queue"
	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Processor applies one feedback event and returns the mentor's new standing.
type Processor interface {
	ProcessFeedback(ctx context.Context, e model.FeedbackEvent) (model.FeedbackResult, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context, shard int) <-chan queue.Job
	Shards() int
}

// Worker processes jobs from one shard.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the shard closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight.
	Shutdown(ctx context.Context) error
}

// FeedbackWorker owns one queue shard. Since a mentor always hashes to the
// same shard, feedback for a mentor is applied strictly one at a time.
type FeedbackWorker struct {
	queue     Queue
	shard     int
	processor Processor
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewFeedbackWorker creates a worker for shard.
func NewFeedbackWorker(q Queue, shard int, p Processor, opts ...Option) *FeedbackWorker {
	w := &FeedbackWorker{
		queue:     q,
		shard:     shard,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. Canceling ctx does not drop accepted jobs: the
// worker keeps consuming its shard until the queue is closed. Shutdown stops it
// after the jobs already buffered on the shard.
func (w *FeedbackWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx = context.WithoutCancel(ctx)
	jobs := w.queue.Dequeue(ctx, w.shard)
	for {
		select {
		case <-w.shutdown:
			w.drain(ctx, jobs)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// drain processes whatever is buffered on the shard without waiting for more.
func (w *FeedbackWorker) drain(ctx context.Context, jobs <-chan queue.Job) {
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		default:
			return
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *FeedbackWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *FeedbackWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: Job is received by value from the channel
	metrics.RecordQueueDequeue()
	start := time.Now()
	res, err := w.processor.ProcessFeedback(ctx, job.Event)
	metrics.RecordFeedbackLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		metrics.RecordFeedbackFailed()
		metrics.RecordErrorByComponent("worker", "feedback_error")
		w.logger.Error(ctx, "feedback failed",
			logger.String("eventID", job.Event.EventID),
			logger.String("mentorID", job.Event.MentorID),
			logger.Error(err),
		)
	} else {
		metrics.RecordFeedbackProcessed()
		if res.Fallback {
			metrics.RecordRankFallback()
		}
		w.logger.Debug(ctx, "feedback applied",
			logger.String("eventID", job.Event.EventID),
			logger.String("mentorID", res.MentorID),
			logger.Float64("rating", res.Rating),
			logger.Int("rank", res.Rank),
		)
	}

	if job.Reply != nil {
		select {
		case job.Reply <- queue.Result{Feedback: res, Err: err}:
		default:
			w.logger.Warn(ctx, "reply dropped", logger.String("eventID", job.Event.EventID))
		}
	}
}

// Pool runs one worker per queue shard. Workers outlive the context passed to
// Start; Shutdown closes the queue and lets them finish what it holds.
type Pool struct {
	workers []*FeedbackWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker for every shard of q.
func NewPool(q Queue, p Processor) *Pool {
	pool := &Pool{
		workers: make([]*FeedbackWorker, q.Shards()),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range pool.workers {
		pool.workers[i] = NewFeedbackWorker(q, i, p, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(len(pool.workers))
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for every worker to drain its shard.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
