// Package queue shards feedback jobs so that all jobs for one mentor are consumed in order by one consumer.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10_000
	defaultShardCount    = 16
)

// Result is what a consumer reports back for a job.
type Result struct {
	Feedback model.FeedbackResult
	Err      error
}

// Job is one feedback event plus an optional channel for its result.
// Reply must be buffered so a consumer never blocks on a caller that went away.
type Job struct {
	Event model.FeedbackEvent
	Reply chan Result
}

// NewJob returns a job with a one-slot reply channel.
func NewJob(e model.FeedbackEvent) Job { //nolint:gocritic // hugeParam: event is copied into the job anyway
	return Job{Event: e, Reply: make(chan Result, 1)}
}

// Queue provides non-blocking enqueue and per-shard, channel-based dequeue.
type Queue interface {
	// Enqueue adds a job to the shard owning its mentor.
	// Returns false if that shard is full or the queue is closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel for shard. It is closed when the queue is
	// closed, after which the jobs still buffered can be received.
	Dequeue(ctx context.Context, shard int) <-chan Job

	// Shards returns the number of shards.
	Shards() int

	// Len returns the number of queued jobs across all shards.
	Len(ctx context.Context) int

	// Close stops accepting jobs and closes every shard channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// ShardedQueue implements Queue with one buffered channel per shard.
type ShardedQueue struct {
	shards     []chan Job
	capacity   int
	shardCount int

	mu     sync.RWMutex
	closed bool
}

// NewShardedQueue creates a queue with configuration options.
func NewShardedQueue(opts ...Option) *ShardedQueue {
	q := &ShardedQueue{
		capacity:   defaultQueueCapacity,
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(q)
	}

	perShard := max(1, q.capacity/q.shardCount)
	q.shards = make([]chan Job, q.shardCount)
	for i := range q.shards {
		q.shards[i] = make(chan Job, perShard)
	}

	metrics.UpdateQueueCapacity(perShard * q.shardCount)
	metrics.UpdateQueueSize(0)
	return q
}

// ShardFor maps a mentor id onto one of n shards.
func ShardFor(mentorID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(mentorID))
	return int(h.Sum32() % uint32(n)) //nolint:gosec // n is a small positive shard count
}

// Enqueue implements Queue.
func (q *ShardedQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	shard := q.shards[ShardFor(j.Event.MentorID, q.shardCount)]
	select {
	case shard <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(q.Len(ctx))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue implements Queue. It hands out the shard channel itself, so a job
// stays in the shard buffer until its consumer receives it.
func (q *ShardedQueue) Dequeue(_ context.Context, shard int) <-chan Job {
	return q.shards[shard]
}

// Shards implements Queue.
func (q *ShardedQueue) Shards() int { return q.shardCount }

// Len implements Queue.
func (q *ShardedQueue) Len(ctx context.Context) int {
	n := 0
	for _, s := range q.shards {
		n += len(s)
	}
	return n
}

// Close implements Queue.
func (q *ShardedQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	for _, s := range q.shards {
		close(s)
	}
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *ShardedQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
