// Package service wires the domain packages to storage, the feedback queue and
// the realtime publisher, and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/mentorlink/internal/adapters/mq/queue"
	workerpool "github.com/okian/mentorlink/internal/adapters/mq/worker"
	"github.com/okian/mentorlink/internal/adapters/realtime"
	"github.com/okian/mentorlink/internal/adapters/repository"
	"github.com/okian/mentorlink/internal/domain/dedupe"
	"github.com/okian/mentorlink/internal/domain/scoring"
	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize           = 10_000
	defaultDedupeSize          = 100_000
	defaultMaxSearchResults    = 50
	defaultMaxLeaderboardLimit = 100
	defaultFeedbackTimeout     = 5 * time.Second
	chatStudentsLimit          = 50
)

// Service implements the API dependencies for the mentorship marketplace.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	index     *repository.RankIndex
	engine    *scoring.Engine
	deduper   dedupe.Deduper
	queue     eventqueue.Queue
	pool      *workerpool.Pool
	publisher realtime.Publisher

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	maxSearchResults    int
	maxLeaderboardLimit int
	feedbackTimeout     time.Duration
	now                 func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the profile store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEngine sets the ranking engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithPublisher sets where realtime events go. Defaults to discarding them.
func WithPublisher(p realtime.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithWorkerCount sets the number of feedback workers, one per queue shard.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the feedback queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many feedback keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSearchResults caps mentor search results.
func WithMaxSearchResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSearchResults = n
		}
	}
}

// WithMaxLeaderboardLimit caps the leaderboard page size.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// WithFeedbackTimeout bounds how long SubmitFeedback waits for its worker.
func WithFeedbackTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.feedbackTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, string, realtime.Message) error { return nil }

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:              scoring.NewEngine(),
		publisher:           discardPublisher{},
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           defaultQueueSize,
		dedupeSize:          defaultDedupeSize,
		maxSearchResults:    defaultMaxSearchResults,
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		feedbackTimeout:     defaultFeedbackTimeout,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the rank index from the store and starts the feedback workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.logger.Info(ctx, "starting mentorlink service...")

	profiles, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	s.index = repository.NewRankIndex()
	s.index.Rebuild(ctx, profiles)
	metrics.UpdateProfilesTotal(len(profiles))

	s.deduper = dedupe.New(dedupe.WithLimit(s.dedupeSize))
	s.queue = eventqueue.NewShardedQueue(
		eventqueue.WithShards(s.workerCount),
		eventqueue.WithCapacity(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "mentorlink service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("profiles", len(profiles)),
		logger.Int("mentorsIndexed", s.index.Count(ctx)),
	)
	return nil
}

// Stop drains the feedback queue and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping mentorlink service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.started = false
	s.logger.Info(ctx, "mentorlink service stopped")
	return firstErr
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// publish sends a realtime event; failures are logged, never returned.
func (s *Service) publish(ctx context.Context, userID, typ string, data any) {
	msg, err := realtime.NewMessage(typ, data)
	if err == nil {
		err = s.publisher.Publish(ctx, userID, msg)
	}
	if err != nil {
		metrics.RecordErrorByComponent("service", "publish")
		s.logger.Warn(ctx, "realtime publish failed",
			logger.String("userID", userID), logger.String("type", typ), logger.Error(err))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		profiles := s.store.Count(ctx)
		stats["queueLength"] = queueLen
		stats["profiles"] = profiles
		stats["mentorsIndexed"] = s.index.Count(ctx)
		stats["dedupeKeys"] = s.deduper.Len()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateProfilesTotal(profiles)
	}
	return stats
}
