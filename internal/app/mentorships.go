package service

import (
	"context"
	"fmt"

	"github.com/okian/mentorlink/internal/domain/mentorship"
	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/pkg/metrics"
)

// ProgressUpdate identifies a mentorship by mentor id or course title.
type ProgressUpdate struct {
	MentorID    string
	CourseTitle string
	// Lectures defaults to 1 when not positive.
	Lectures int
}

// RegisterMentorship enrolls studentID with mentorID, moving coins between them.
func (s *Service) RegisterMentorship(ctx context.Context, studentID, mentorID string, req mentorship.Registration) (*model.Mentorship, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if mentorID == "" {
		return nil, fmt.Errorf("%w: mentor id is required", mentorship.ErrInvalidRequest)
	}
	if mentorID == studentID {
		return nil, mentorship.ErrSelfMentorship
	}

	var created *model.Mentorship
	out, err := s.store.Txn(ctx, []string{studentID, mentorID}, func(m map[string]*model.Profile) error {
		var err error
		created, err = mentorship.Register(m[studentID], m[mentorID], req, s.now())
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	s.reindex(ctx, out)
	metrics.RecordMentorshipEvent("registered")
	return created, nil
}

// RecordProgress adds completed lectures to one of the student's mentorships.
func (s *Service) RecordProgress(ctx context.Context, studentID string, u ProgressUpdate) (mentorship.ProgressResult, error) {
	if err := s.ready(); err != nil {
		return mentorship.ProgressResult{}, err
	}
	lectures := u.Lectures
	if lectures <= 0 {
		lectures = 1
	}

	var res mentorship.ProgressResult
	err := s.withMentorship(ctx, studentID, u.MentorID, u.CourseTitle, func(student, mentor *model.Profile, idx int) error {
		var err error
		res, err = mentorship.Progress(student, mentor, idx, lectures, s.now())
		return err
	})
	if err != nil {
		return mentorship.ProgressResult{}, err
	}

	metrics.RecordMentorshipEvent("progress")
	if res.Completed {
		metrics.RecordMentorshipEvent("completed")
	}
	return res, nil
}

// CompleteMentorship force-completes a mentorship and pays the completion bonus.
func (s *Service) CompleteMentorship(ctx context.Context, studentID, mentorID, courseTitle string) (*model.Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var updated *model.Profile
	err := s.withMentorship(ctx, studentID, mentorID, courseTitle, func(student, mentor *model.Profile, idx int) error {
		if err := mentorship.Complete(student, mentor, idx, s.now()); err != nil {
			return err
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordMentorshipEvent("completed")
	return updated.Clone(), nil
}

// withMentorship locates the mentorship, then runs fn on the student and its
// mentor in one transaction. The mentorship is looked up again inside the
// transaction so a concurrent change cannot shift the index.
func (s *Service) withMentorship(ctx context.Context, studentID, mentorID, courseTitle string,
	fn func(student, mentor *model.Profile, idx int) error,
) error {
	if mentorID == "" && courseTitle == "" {
		return fmt.Errorf("%w: mentor id or course title is required", mentorship.ErrInvalidRequest)
	}
	student, err := s.store.Get(ctx, studentID)
	if err != nil {
		return translate(err)
	}
	idx := mentorship.Find(student, mentorID, courseTitle)
	if idx < 0 {
		return mentorship.ErrMentorshipNotFound
	}
	owner := student.Mentorships[idx].MentorID

	ids := []string{studentID}
	if owner != "" && owner != studentID {
		ids = append(ids, owner)
	}
	out, err := s.store.Txn(ctx, ids, func(m map[string]*model.Profile) error {
		st := m[studentID]
		i := mentorship.Find(st, mentorID, courseTitle)
		if i < 0 {
			return mentorship.ErrMentorshipNotFound
		}
		return fn(st, m[owner], i)
	})
	if err != nil {
		return translate(err)
	}
	// Completing a course teaches the student a skill, which can make them a
	// mentor, so both sides are reindexed.
	s.reindex(ctx, out)
	return nil
}
