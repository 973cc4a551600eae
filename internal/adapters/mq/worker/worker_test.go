package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/mentorlink/internal/adapters/mq/queue"
	worker "github.com/okian/mentorlink/internal/adapters/mq/worker"
	model "github.com/okian/mentorlink/internal/domain/model"
	logging "github.com/okian/mentorlink/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	shards []chan queue.Job
	once   sync.Once
}

func newMockQueue(n int) *mockQueue {
	q := &mockQueue{shards: make([]chan queue.Job, n)}
	for i := range q.shards {
		q.shards[i] = make(chan queue.Job, 16)
	}
	return q
}

func (mq *mockQueue) Dequeue(ctx context.Context, shard int) <-chan queue.Job {
	return mq.shards[shard]
}

func (mq *mockQueue) Shards() int { return len(mq.shards) }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() {
		for _, s := range mq.shards {
			close(s)
		}
	})
	return nil
}

type mockProcessor struct {
	mu       sync.Mutex
	errs     map[string]error
	fallback map[string]bool
	seen     []string
	inFlight map[string]int
	overlap  bool
	delay    time.Duration
}

func newMockProcessor() *mockProcessor {
	return &mockProcessor{errs: map[string]error{}, fallback: map[string]bool{}, inFlight: map[string]int{}}
}

func (mp *mockProcessor) ProcessFeedback(ctx context.Context, e model.FeedbackEvent) (model.FeedbackResult, error) {
	mp.mu.Lock()
	mp.inFlight[e.MentorID]++
	if mp.inFlight[e.MentorID] > 1 {
		mp.overlap = true
	}
	mp.seen = append(mp.seen, e.EventID)
	err := mp.errs[e.EventID]
	fb := mp.fallback[e.EventID]
	mp.mu.Unlock()

	time.Sleep(mp.delay)

	mp.mu.Lock()
	mp.inFlight[e.MentorID]--
	mp.mu.Unlock()

	if err != nil {
		return model.FeedbackResult{}, err
	}
	return model.FeedbackResult{MentorID: e.MentorID, Rating: e.Rating, Rank: 4, Fallback: fb}, nil
}

func (mp *mockProcessor) processed() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]string(nil), mp.seen...)
}

func feedbackJob(id, mentor string) queue.Job {
	return queue.NewJob(model.FeedbackEvent{EventID: id, MentorID: mentor, StudentID: "s", Rating: 5})
}

func TestFeedbackWorker(t *testing.T) {
	convey.Convey("Given a worker on shard 0", t, func() {
		_ = logging.Init()

		q := newMockQueue(1)
		proc := newMockProcessor()
		w := worker.NewFeedbackWorker(q, 0, proc, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)
		defer func() { _ = w.Shutdown(context.Background()) }()

		convey.Convey("When a job is processed", func() {
			job := feedbackJob("e-1", "m-1")
			q.shards[0] <- job

			convey.Convey("Then the result is sent on the reply channel", func() {
				select {
				case res := <-job.Reply:
					convey.So(res.Err, convey.ShouldBeNil)
					convey.So(res.Feedback.MentorID, convey.ShouldEqual, "m-1")
					convey.So(res.Feedback.Rank, convey.ShouldEqual, 4)
				case <-time.After(time.Second):
					convey.So("timeout", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When processing fails", func() {
			proc.errs["e-2"] = errors.New("store down")
			job := feedbackJob("e-2", "m-1")
			q.shards[0] <- job

			convey.Convey("Then the error is reported and the worker keeps going", func() {
				res := <-job.Reply
				convey.So(res.Err, convey.ShouldNotBeNil)

				next := feedbackJob("e-3", "m-1")
				q.shards[0] <- next
				convey.So((<-next.Reply).Err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a job has no reply channel", func() {
			q.shards[0] <- queue.Job{Event: model.FeedbackEvent{EventID: "e-4", MentorID: "m-1"}}
			time.Sleep(20 * time.Millisecond)

			convey.Convey("Then it is still processed", func() {
				convey.So(proc.processed(), convey.ShouldContain, "e-4")
			})
		})

		convey.Convey("When the context is canceled", func() {
			cancel()
			job := feedbackJob("e-5", "m-1")
			q.shards[0] <- job

			convey.Convey("Then the worker keeps consuming its shard", func() {
				select {
				case res := <-job.Reply:
					convey.So(res.Err, convey.ShouldBeNil)
				case <-time.After(time.Second):
					convey.So("timeout", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When the worker is shut down with jobs buffered", func() {
			proc.delay = 5 * time.Millisecond
			for i := 0; i < 10; i++ {
				q.shards[0] <- feedbackJob("buffered-"+string(rune('a'+i)), "m-1")
			}
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then the buffered jobs are processed before it returns", func() {
				convey.So(proc.processed(), convey.ShouldHaveLength, 10)
				convey.So(len(q.shards[0]), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops without error and a second call is safe", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a four-shard queue", t, func() {
		_ = logging.Init()

		q := queue.NewShardedQueue(queue.WithShards(4), queue.WithCapacity(400))
		proc := newMockProcessor()
		proc.delay = time.Millisecond
		pool := worker.NewPool(q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When many jobs for a few mentors arrive", func() {
			var replies []chan queue.Result
			for i := 0; i < 60; i++ {
				mentor := []string{"m-a", "m-b", "m-c"}[i%3]
				job := feedbackJob(mentor+"-"+string(rune('A'+i)), mentor)
				convey.So(q.Enqueue(ctx, job), convey.ShouldBeTrue)
				replies = append(replies, job.Reply)
			}
			for _, r := range replies {
				<-r
			}

			convey.Convey("Then every job is answered and a mentor never has two in flight", func() {
				convey.So(proc.processed(), convey.ShouldHaveLength, 60)
				convey.So(proc.overlap, convey.ShouldBeFalse)
			})

			convey.Convey("And shutdown drains cleanly", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPoolDrainsAfterCancel(t *testing.T) {
	convey.Convey("Given a single-shard pool with a slow processor", t, func() {
		_ = logging.Init()

		q := queue.NewShardedQueue(queue.WithShards(1), queue.WithCapacity(100))
		proc := newMockProcessor()
		proc.delay = 2 * time.Millisecond
		pool := worker.NewPool(q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		pool.Start(ctx)

		convey.Convey("When 50 jobs are accepted and the start context is canceled", func() {
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(context.Background(), feedbackJob("job-"+string(rune('A'+i)), "m-1")), convey.ShouldBeTrue)
			}
			cancel()
			err := pool.Shutdown(context.Background())

			convey.Convey("Then shutdown returns only after every accepted job is applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(proc.processed(), convey.ShouldHaveLength, 50)
				convey.So(q.Len(context.Background()), convey.ShouldEqual, 0)
			})
		})
	})
}
