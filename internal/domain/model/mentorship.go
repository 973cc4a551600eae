package model

import "time"

// Mentorship statuses.
const (
	MentorshipActive    = "active"
	MentorshipCompleted = "completed"
)

// Mentorship is a learner's enrollment with one mentor for one course.
// It lives on the learner's profile; at most one record exists per (mentor, course).
type Mentorship struct {
	MentorID          string     `json:"mentorId"`
	MentorName        string     `json:"mentorName"`
	CourseTitle       string     `json:"courseTitle"`
	Status            string     `json:"status"`
	TotalLectures     int        `json:"totalLectures"`
	CompletedLectures int        `json:"completedLectures"`
	Cost              int        `json:"cost"`
	Rating            *float64   `json:"rating,omitempty"`
	StartedAt         time.Time  `json:"startedAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func (m Mentorship) clone() Mentorship {
	if m.Rating != nil {
		r := *m.Rating
		m.Rating = &r
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		m.CompletedAt = &t
	}
	return m
}
