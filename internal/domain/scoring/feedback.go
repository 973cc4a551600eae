package scoring

import (
	"math"

	"github.com/okian/mentorlink/internal/domain/model"
)

// DefaultFeedbackWeight is the share of a new rating in the smoothed mentor rating.
const DefaultFeedbackWeight = 0.15

const (
	minRating = 1.0
	maxRating = 5.0
)

// FeedbackOutcome describes the write-back performed by ApplyFeedback.
type FeedbackOutcome struct {
	PreviousRating float64
	Rating         float64
	Rank           int
	// Score is the rank score; zero when Fallback is set.
	Score float64
	// Fallback is set when the rank formula failed and the rank was derived from the rating.
	Fallback bool
	// Err is the rank formula error behind a fallback.
	Err error
}

// ApplyFeedback folds newRating into the mentor's rating by exponential smoothing,
//
//	rating = clamp(prev*(1-w) + new*w, 1, 5)
//
// then recomputes the rank against the rating student's goals and writes both
// back to mentor. A rank error never fails the update: the rank becomes
// round(rating) instead. newRating is expected to be validated by the caller.
func (e *Engine) ApplyFeedback(mentor *model.Profile, newRating float64, studentGoals []string) FeedbackOutcome {
	if mentor == nil {
		return FeedbackOutcome{}
	}

	prev := mentor.Rating
	if prev == 0 || !finite(prev) {
		prev = priorRating
	}

	rating := prev*(1-e.feedbackWeight) + newRating*e.feedbackWeight
	if !finite(rating) {
		rating = prev
	}
	rating = clamp(rating, minRating, maxRating)
	mentor.Rating = rating

	out := FeedbackOutcome{PreviousRating: prev, Rating: rating}

	res, err := e.Rank(mentor, studentGoals)
	if err != nil {
		out.Rank = int(math.Round(clamp(rating, minRating, maxRating)))
		out.Fallback = true
		out.Err = err
	} else {
		out.Rank = res.Rank
		out.Score = res.Score
	}
	mentor.Rank = out.Rank
	return out
}
