package loadgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/logger"
)

// ErrServiceUnavailable is returned when the health check fails.
var ErrServiceUnavailable = errors.New("service is not available")

// Runner executes a load run against one server.
type Runner struct {
	cfg    *Config
	client *Client
	log    logger.Logger

	mu         sync.Mutex
	registered map[[2]string]bool
	violations []string
}

// NewRunner creates a runner for cfg, filling in defaults.
func NewRunner(cfg *Config) (*Runner, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()[:8]
	}
	client, err := NewClient(cfg.BaseURL, cfg.Secret, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:        cfg,
		client:     client,
		log:        logger.Get().Named("loadgen"),
		registered: make(map[[2]string]bool),
	}, nil
}

// Run executes the full load run: health check, seeding, mentorships,
// concurrent feedback and the final invariant checks.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	r, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}

// Run executes the load run.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	r.log.Info(ctx, "starting load run",
		logger.String("base_url", r.cfg.BaseURL),
		logger.String("run_id", r.cfg.RunID),
		logger.Int("mentors", r.cfg.Mentors),
		logger.Int("learners", r.cfg.Learners),
		logger.Int("feedback", r.cfg.Feedback),
		logger.Int("workers", r.cfg.Workers))

	if err := r.checkHealth(ctx); err != nil {
		return stats, err
	}

	plan := GeneratePlan(r.cfg)

	if err := r.seedProfiles(ctx, plan, stats); err != nil {
		return stats, err
	}
	r.registerMentorships(ctx, plan, stats)
	results := r.submitFeedback(ctx, plan, stats)

	// Let pending updates drain before reading state back.
	if stats.FeedbackPending > 0 {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(settleDelay):
		}
	}

	r.verifyFeedback(results)
	if err := r.verifyMentors(ctx, plan, stats); err != nil {
		return stats, err
	}
	if err := r.verifyRecommendations(ctx, plan, stats); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.logStats(ctx, stats)

	if len(r.violations) > 0 {
		for _, v := range r.violations {
			r.log.Error(ctx, "invariant violated", logger.String("detail", v))
		}
		return stats, fmt.Errorf("%d invariant violations", len(r.violations))
	}
	return stats, nil
}

func (r *Runner) checkHealth(ctx context.Context) error {
	status, err := r.client.Do(ctx, http.MethodGet, "/healthz", "", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrServiceUnavailable, status)
	}
	r.log.Info(ctx, "service is healthy")
	return nil
}

type patchRequest struct {
	FirstName     string         `json:"firstName,omitempty"`
	LastName      string         `json:"lastName,omitempty"`
	DOB           string         `json:"dob,omitempty"`
	Gender        string         `json:"gender,omitempty"`
	Skills        []string       `json:"skills,omitempty"`
	LearningGoals []string       `json:"learningGoals,omitempty"`
	Subtopics     []SubtopicSeed `json:"subtopics,omitempty"`
}

func (r *Runner) seedProfiles(ctx context.Context, plan *Plan, stats *Stats) error {
	var created atomic.Int64
	var firstErr error
	var errOnce sync.Once

	jobs := make([]func() error, 0, len(plan.Mentors)+len(plan.Learners))
	for _, m := range plan.Mentors {
		jobs = append(jobs, func() error {
			// Goals are set so the completion check can verify the mentor.
			return r.createProfile(ctx, m.ID, patchRequest{
				FirstName:     m.FirstName,
				LastName:      "Loadgen",
				DOB:           "1990-01-01",
				Gender:        "other",
				Skills:        m.Skills,
				LearningGoals: m.Skills[:1],
				Subtopics:     m.Subtopics,
			})
		})
	}
	for _, l := range plan.Learners {
		jobs = append(jobs, func() error {
			return r.createProfile(ctx, l.ID, patchRequest{
				FirstName:     "Learner",
				LastName:      "Loadgen",
				LearningGoals: l.Goals,
			})
		})
	}

	r.pool(len(jobs), func(i int) {
		if err := jobs[i](); err != nil {
			errOnce.Do(func() { firstErr = err })
			return
		}
		created.Add(1)
	})

	stats.ProfilesCreated = int(created.Load())
	r.log.Info(ctx, "profiles seeded", logger.Int("count", stats.ProfilesCreated))
	return firstErr
}

func (r *Runner) createProfile(ctx context.Context, id string, patch patchRequest) error {
	status, err := r.client.Do(ctx, http.MethodPost, "/profiles", id,
		map[string]string{"email": email(id), "firstName": patch.FirstName, "lastName": patch.LastName}, nil)
	if err != nil {
		return fmt.Errorf("create profile %s: %w", id, err)
	}
	if status != http.StatusCreated && status != http.StatusConflict {
		return fmt.Errorf("create profile %s: unexpected status %d", id, status)
	}
	status, err = r.client.Do(ctx, http.MethodPatch, "/me", id, patch, nil)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", id, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("update profile %s: unexpected status %d", id, status)
	}
	return nil
}

// registerMentorships signs learners up with their planned mentors. Mentors
// that are full reject the request and the pair is left out of feedback.
func (r *Runner) registerMentorships(ctx context.Context, plan *Plan, stats *Stats) {
	var ok, rejected atomic.Int64

	r.pool(len(plan.Learners), func(i int) {
		l := plan.Learners[i]
		for _, mentorID := range l.Mentors {
			status, err := r.client.Do(ctx, http.MethodPost, "/mentorships", l.ID, map[string]any{
				"mentorId":    mentorID,
				"courseTitle": "Load " + mentorID,
				"coinCost":    10,
			}, nil)
			if err != nil || status != http.StatusCreated {
				rejected.Add(1)
				if r.cfg.Verbose {
					r.log.Debug(ctx, "registration rejected",
						logger.String("learner", l.ID),
						logger.String("mentor", mentorID),
						logger.Int("status", status))
				}
				continue
			}
			ok.Add(1)
			r.mu.Lock()
			r.registered[[2]string{l.ID, mentorID}] = true
			r.mu.Unlock()
		}
	})

	stats.MentorshipsRegistered = int(ok.Load())
	stats.MentorshipsRejected = int(rejected.Load())
	r.log.Info(ctx, "mentorships registered",
		logger.Int("registered", stats.MentorshipsRegistered),
		logger.Int("rejected", stats.MentorshipsRejected))
}

// submitFeedback fires the planned ratings concurrently and returns the
// results of the applied ones.
func (r *Runner) submitFeedback(ctx context.Context, plan *Plan, stats *Stats) []model.FeedbackResult {
	events := make([]FeedbackEvent, 0, len(plan.Feedback))
	for _, e := range plan.Feedback {
		if r.registered[[2]string{e.LearnerID, e.MentorID}] {
			events = append(events, e)
		}
	}

	var submitted, applied, pending, failed atomic.Int64
	results := make([]model.FeedbackResult, len(events))
	done := make([]bool, len(events))
	start := time.Now()

	r.pool(len(events), func(i int) {
		e := events[i]
		submitted.Add(1)
		var res model.FeedbackResult
		status, err := r.client.Do(ctx, http.MethodPost, "/feedback", e.LearnerID,
			map[string]any{"mentorId": e.MentorID, "rating": e.Rating}, &res,
			"Idempotency-Key", e.Key)
		switch {
		case err != nil:
			failed.Add(1)
		case status == http.StatusOK:
			applied.Add(1)
			results[i] = res
			done[i] = true
		case status == http.StatusAccepted:
			pending.Add(1)
		default:
			failed.Add(1)
			if r.cfg.Verbose {
				r.log.Debug(ctx, "feedback rejected",
					logger.String("learner", e.LearnerID),
					logger.String("mentor", e.MentorID),
					logger.Int("status", status))
			}
		}
	})

	stats.FeedbackSubmitted = int(submitted.Load())
	stats.FeedbackApplied = int(applied.Load())
	stats.FeedbackPending = int(pending.Load())
	stats.FeedbackFailed = int(failed.Load())

	elapsed := time.Since(start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(stats.FeedbackSubmitted) / elapsed.Seconds()
	}
	r.log.Info(ctx, "feedback submitted",
		logger.Int("submitted", stats.FeedbackSubmitted),
		logger.Int("applied", stats.FeedbackApplied),
		logger.Int("pending", stats.FeedbackPending),
		logger.Int("failed", stats.FeedbackFailed),
		logger.Duration("elapsed", elapsed),
		logger.Float64("per_second", rate))

	out := make([]model.FeedbackResult, 0, len(events))
	for i, ok := range done {
		if ok {
			out = append(out, results[i])
		}
	}
	return out
}

// pool runs fn for 0..n-1 on the configured number of workers.
func (r *Runner) pool(n int, fn func(i int)) {
	jobs := make(chan int, r.cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (r *Runner) violate(format string, args ...any) {
	r.mu.Lock()
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *Runner) logStats(ctx context.Context, stats *Stats) {
	successRate := 0.0
	if stats.FeedbackSubmitted > 0 {
		successRate = float64(stats.FeedbackApplied+stats.FeedbackPending) / float64(stats.FeedbackSubmitted) * percentageMultiplier
	}
	r.log.Info(ctx, "load run finished",
		logger.Int("profiles", stats.ProfilesCreated),
		logger.Int("mentorships", stats.MentorshipsRegistered),
		logger.Int("feedback_applied", stats.FeedbackApplied),
		logger.Float64("feedback_success_pct", successRate),
		logger.Int("recommendations_checked", stats.RecommendationsChecked),
		logger.Int("leaderboard_entries", stats.LeaderboardEntries),
		logger.Int("violations", len(r.violations)),
		logger.Duration("duration", stats.Duration))
}
