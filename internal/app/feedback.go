package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/mentorlink/internal/adapters/mq/queue"
	"github.com/okian/mentorlink/internal/adapters/realtime"
	"github.com/okian/mentorlink/internal/domain/mentorship"
	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/logger"
	"github.com/okian/mentorlink/pkg/metrics"
)

// Feedback is a learner's rating of one of their mentors.
type Feedback struct {
	StudentID   string
	MentorID    string
	CourseTitle string
	Rating      float64
	// IdempotencyKey identifies retries of the same submission. Optional.
	IdempotencyKey string
}

// SubmitFeedback validates the feedback, queues it on the mentor's shard and
// waits for the worker to apply it. A retried submission with the same
// idempotency key is rejected with ErrDuplicateFeedback.
func (s *Service) SubmitFeedback(ctx context.Context, fb Feedback) (model.FeedbackResult, error) { //nolint:gocritic // hugeParam: request value
	if err := s.ready(); err != nil {
		return model.FeedbackResult{}, err
	}
	if math.IsNaN(fb.Rating) || fb.Rating < 1 || fb.Rating > 5 {
		return model.FeedbackResult{}, ErrInvalidRating
	}
	if fb.MentorID == "" {
		return model.FeedbackResult{}, fmt.Errorf("%w: mentor id is required", ErrInvalidRequest)
	}
	if fb.MentorID == fb.StudentID {
		return model.FeedbackResult{}, ErrSelfFeedback
	}

	student, err := s.store.Get(ctx, fb.StudentID)
	if err != nil {
		return model.FeedbackResult{}, translate(err)
	}
	if mentorship.FindForFeedback(student, fb.MentorID, fb.CourseTitle) < 0 {
		return model.FeedbackResult{}, mentorship.ErrMentorshipNotFound
	}

	eventID := strings.TrimSpace(fb.IdempotencyKey)
	if eventID == "" {
		eventID = uuid.NewString()
	}
	key := fb.StudentID + "/" + eventID
	if s.deduper.SeenAndRecord(key) {
		metrics.RecordFeedbackDuplicate()
		return model.FeedbackResult{}, ErrDuplicateFeedback
	}

	job := eventqueue.NewJob(model.FeedbackEvent{
		EventID:     eventID,
		MentorID:    fb.MentorID,
		StudentID:   fb.StudentID,
		CourseTitle: fb.CourseTitle,
		Rating:      fb.Rating,
		TS:          s.now(),
	})
	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Forget(key)
		return model.FeedbackResult{}, ErrQueueFull
	}

	timer := time.NewTimer(s.feedbackTimeout)
	defer timer.Stop()

	select {
	case res := <-job.Reply:
		if res.Err != nil {
			s.deduper.Forget(key)
			return model.FeedbackResult{}, res.Err
		}
		return res.Feedback, nil
	case <-timer.C:
		// The job stays queued and will still be applied.
		return model.FeedbackResult{}, ErrFeedbackTimeout
	case <-ctx.Done():
		return model.FeedbackResult{}, ctx.Err()
	}
}

// ProcessFeedback applies one feedback event. It implements worker.Processor
// and runs on the mentor's shard worker, so events for a mentor never overlap.
// The mentor's rating and rank and the student's mentorship rating are
// written in one transaction.
func (s *Service) ProcessFeedback(ctx context.Context, e model.FeedbackEvent) (model.FeedbackResult, error) { //nolint:gocritic // hugeParam: event value from the queue
	var res model.FeedbackResult
	out, err := s.store.Txn(ctx, []string{e.MentorID, e.StudentID}, func(m map[string]*model.Profile) error {
		mentor, student := m[e.MentorID], m[e.StudentID]

		idx := mentorship.FindForFeedback(student, e.MentorID, e.CourseTitle)
		if idx < 0 {
			return mentorship.ErrMentorshipNotFound
		}

		outcome := s.engine.ApplyFeedback(mentor, e.Rating, student.LearningGoals)
		mentor.UpdatedAt = e.TS
		if outcome.Fallback {
			s.logger.Warn(ctx, "rank computation failed, using rating",
				logger.String("mentorID", e.MentorID), logger.Error(outcome.Err))
		}

		res = model.FeedbackResult{
			MentorID: e.MentorID,
			Rating:   outcome.Rating,
			Rank:     outcome.Rank,
			Fallback: outcome.Fallback,
		}
		return mentorship.RecordRating(student, idx, e.Rating, e.TS)
	})
	if err != nil {
		return model.FeedbackResult{}, translate(err)
	}

	s.reindex(ctx, out)
	s.publish(ctx, e.MentorID, realtime.TypeRankUpdated, res)
	return res, nil
}
