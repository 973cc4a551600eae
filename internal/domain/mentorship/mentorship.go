// Package mentorship implements the coin economy around mentorships:
// registration, lecture progress, completion and the per-mentorship rating.
package mentorship

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/profile"
)

// Economy constants.
const (
	DefaultCoinCost      = 50
	DefaultTotalLectures = 10
	MentorShare          = 0.5
	CoinsPerLecture      = 10
	CompletionBonus      = 100
)

// Registration is a learner's request to enroll with a mentor.
type Registration struct {
	CourseTitle   string
	CoinCost      int // <= 0 selects DefaultCoinCost
	TotalLectures int // <= 0 selects DefaultTotalLectures
}

// ProgressResult summarizes a Progress call.
type ProgressResult struct {
	CoinsEarned       int  `json:"coinsEarned"`
	Completed         bool `json:"completed"`
	CompletedLectures int  `json:"completedLectures"`
	TotalLectures     int  `json:"totalLectures"`
}

// Register charges the student, pays the mentor half the cost and takes one of
// the mentor's slots. A completed mentorship for the same (mentor, course) is
// renewed instead of duplicated.
func Register(student, mentor *model.Profile, req Registration, now time.Time) (*model.Mentorship, error) {
	title := strings.TrimSpace(req.CourseTitle)
	if title == "" {
		return nil, fmt.Errorf("%w: courseTitle is required", ErrInvalidRequest)
	}
	if student.ID == mentor.ID {
		return nil, ErrSelfMentorship
	}
	cost := req.CoinCost
	if cost <= 0 {
		cost = DefaultCoinCost
	}
	total := req.TotalLectures
	if total <= 0 {
		total = DefaultTotalLectures
	}

	idx := slices.IndexFunc(student.Mentorships, func(m model.Mentorship) bool {
		return m.MentorID == mentor.ID && strings.EqualFold(m.CourseTitle, title)
	})
	if idx >= 0 && student.Mentorships[idx].Status == model.MentorshipActive {
		return nil, ErrAlreadyActive
	}

	if student.Points < cost {
		return nil, ErrInsufficientCoins
	}
	maxMentees := mentor.MaxMentees
	if maxMentees <= 0 {
		maxMentees = model.DefaultMaxMentees
	}
	if mentor.ActiveMentees >= maxMentees {
		return nil, ErrMentorFull
	}

	student.Points -= cost
	mentor.Points += int(math.Round(float64(cost) * MentorShare))
	mentor.ActiveMentees++

	if idx < 0 {
		student.Mentorships = append(student.Mentorships, model.Mentorship{
			MentorID:      mentor.ID,
			MentorName:    mentor.FullName(),
			CourseTitle:   title,
			Status:        model.MentorshipActive,
			TotalLectures: total,
			Cost:          cost,
			StartedAt:     now,
			UpdatedAt:     now,
		})
		idx = len(student.Mentorships) - 1
	} else {
		m := &student.Mentorships[idx]
		m.Status = model.MentorshipActive
		m.CompletedLectures = 0
		m.TotalLectures = total
		m.Cost = cost
		m.CompletedAt = nil
		m.UpdatedAt = now
	}

	if !slices.Contains(student.Courses, title) {
		student.Courses = append(student.Courses, title)
	}
	student.UpdatedAt = now
	mentor.UpdatedAt = now

	out := student.Mentorships[idx]
	return &out, nil
}

// Find returns the index of the first mentorship matching the mentor id or the
// course title (case-insensitive), or -1.
func Find(student *model.Profile, mentorID, courseTitle string) int {
	courseTitle = strings.TrimSpace(courseTitle)
	return slices.IndexFunc(student.Mentorships, func(m model.Mentorship) bool {
		byMentor := mentorID != "" && m.MentorID == mentorID
		byCourse := courseTitle != "" && strings.EqualFold(m.CourseTitle, courseTitle)
		return byMentor || byCourse
	})
}

// FindForFeedback returns the index of the mentorship with mentorID, further
// narrowed by course title when one is given, or -1.
func FindForFeedback(student *model.Profile, mentorID, courseTitle string) int {
	courseTitle = strings.TrimSpace(courseTitle)
	return slices.IndexFunc(student.Mentorships, func(m model.Mentorship) bool {
		if m.MentorID != mentorID {
			return false
		}
		return courseTitle == "" || strings.EqualFold(m.CourseTitle, courseTitle)
	})
}

// Progress records completed lectures on mentorship idx, capped at the total,
// paying CoinsPerLecture for each. Reaching the total completes the course:
// it becomes a skill of the student, the mentor's subtopics for it are merged
// in and the mentor's slot is released. mentor may be nil.
func Progress(student, mentor *model.Profile, idx, lectures int, now time.Time) (ProgressResult, error) {
	if idx < 0 || idx >= len(student.Mentorships) {
		return ProgressResult{}, ErrMentorshipNotFound
	}
	m := &student.Mentorships[idx]
	total := m.TotalLectures
	if total <= 0 {
		total = DefaultTotalLectures
	}
	lectures = max(0, lectures)

	done := min(total, m.CompletedLectures+lectures)
	inc := done - m.CompletedLectures
	res := ProgressResult{CompletedLectures: m.CompletedLectures, TotalLectures: total}
	if inc <= 0 {
		return res, nil
	}

	res.CoinsEarned = inc * CoinsPerLecture
	student.Points += res.CoinsEarned
	m.CompletedLectures = done
	m.UpdatedAt = now
	res.CompletedLectures = done

	if done >= total {
		res.Completed = true
		finish(student, mentor, m, now)
		learnSkill(student, mentor, m.CourseTitle)
	}
	student.UpdatedAt = now
	profile.RecomputeCompletion(student)
	return res, nil
}

// Complete force-completes mentorship idx and grants CompletionBonus coins.
func Complete(student, mentor *model.Profile, idx int, now time.Time) error {
	if idx < 0 || idx >= len(student.Mentorships) {
		return ErrMentorshipNotFound
	}
	m := &student.Mentorships[idx]
	if m.TotalLectures <= 0 {
		m.TotalLectures = DefaultTotalLectures
	}
	m.CompletedLectures = m.TotalLectures
	finish(student, mentor, m, now)
	student.Points += CompletionBonus
	student.UpdatedAt = now
	return nil
}

// RecordRating stores the learner's rating on mentorship idx.
func RecordRating(student *model.Profile, idx int, rating float64, now time.Time) error {
	if idx < 0 || idx >= len(student.Mentorships) {
		return ErrMentorshipNotFound
	}
	r := rating
	student.Mentorships[idx].Rating = &r
	student.Mentorships[idx].UpdatedAt = now
	student.UpdatedAt = now
	return nil
}

// finish marks m completed and frees the mentor slot if it was still held.
func finish(student, mentor *model.Profile, m *model.Mentorship, now time.Time) {
	wasActive := m.Status == model.MentorshipActive
	m.Status = model.MentorshipCompleted
	m.UpdatedAt = now
	if m.CompletedAt == nil {
		t := now
		m.CompletedAt = &t
	}
	if !slices.Contains(student.CompletedCourses, m.CourseTitle) {
		student.CompletedCourses = append(student.CompletedCourses, m.CourseTitle)
	}
	if wasActive && mentor != nil && mentor.ID == m.MentorID {
		mentor.ActiveMentees = max(0, mentor.ActiveMentees-1)
		mentor.UpdatedAt = now
	}
}

// learnSkill adds the course as a student skill and merges the mentor's topics for it.
func learnSkill(student, mentor *model.Profile, course string) {
	if mentor == nil {
		return
	}
	skill := strings.TrimSpace(course)
	if !slices.Contains(student.Skills, skill) {
		student.Skills = append(student.Skills, skill)
	}

	src := slices.IndexFunc(mentor.Subtopics, func(s model.Subtopic) bool { return strings.EqualFold(s.Skill, skill) })
	if src < 0 {
		return
	}
	topics := mentor.Subtopics[src].Topics

	dst := slices.IndexFunc(student.Subtopics, func(s model.Subtopic) bool { return strings.EqualFold(s.Skill, skill) })
	if dst < 0 {
		student.Subtopics = append(student.Subtopics, model.Subtopic{Skill: skill, Topics: slices.Clone(topics)})
		return
	}
	for _, t := range topics {
		if !slices.Contains(student.Subtopics[dst].Topics, t) {
			student.Subtopics[dst].Topics = append(student.Subtopics[dst].Topics, t)
		}
	}
}
