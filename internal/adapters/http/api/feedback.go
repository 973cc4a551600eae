package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/mentorlink/internal/app"
	"github.com/okian/mentorlink/internal/domain/model"
)

// IdempotencyHeader carries the client's key for retried feedback.
const IdempotencyHeader = "Idempotency-Key"

// FeedbackDependencies defines the feedback operation.
type FeedbackDependencies interface {
	SubmitFeedback(ctx context.Context, fb service.Feedback) (model.FeedbackResult, error)
}

// FeedbackHandler handles feedback requests.
type FeedbackHandler struct {
	deps FeedbackDependencies
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps FeedbackDependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

type feedbackRequest struct {
	MentorID    string   `json:"mentorId" validate:"required"`
	CourseTitle string   `json:"courseTitle"`
	Rating      *float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

type pendingResponse struct {
	Status string `json:"status"`
}

// HandlePostFeedback handles POST /feedback. The response carries the
// mentor's new rating and rank. When the update is still queued after the
// service's timeout the request is answered with 202.
func (h *FeedbackHandler) HandlePostFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	userID, _ := userFrom(r)

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	res, err := h.deps.SubmitFeedback(r.Context(), service.Feedback{
		StudentID:      userID,
		MentorID:       req.MentorID,
		CourseTitle:    req.CourseTitle,
		Rating:         *req.Rating,
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
	})
	switch {
	case errors.Is(err, service.ErrFeedbackTimeout):
		writeJSON(w, http.StatusAccepted, pendingResponse{Status: "pending"})
	case err != nil:
		writeError(w, Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
