package model

import "time"

// FeedbackEvent is a learner's rating of a mentor, submitted once per mentorship.
type FeedbackEvent struct {
	EventID     string    // unique id for idempotency
	MentorID    string    // mentor being rated
	StudentID   string    // learner who gave the rating
	CourseTitle string    // optional; narrows which mentorship is rated
	Rating      float64   // raw rating in [1,5]
	TS          time.Time // submission time
}

// FeedbackResult is the mentor's rating and rank after a feedback event was applied.
type FeedbackResult struct {
	MentorID string  `json:"mentorId"`
	Rating   float64 `json:"rating"`
	Rank     int     `json:"rank"`
	Fallback bool    `json:"fallback"`
}
