package api

import (
	"context"
	"net/http"

	service "github.com/okian/mentorlink/internal/app"
	"github.com/okian/mentorlink/internal/domain/mentorship"
	"github.com/okian/mentorlink/internal/domain/model"
)

// MentorshipDependencies defines the mentorship operations.
type MentorshipDependencies interface {
	RegisterMentorship(ctx context.Context, studentID, mentorID string, req mentorship.Registration) (*model.Mentorship, error)
	RecordProgress(ctx context.Context, studentID string, u service.ProgressUpdate) (mentorship.ProgressResult, error)
	CompleteMentorship(ctx context.Context, studentID, mentorID, courseTitle string) (*model.Profile, error)
}

// MentorshipHandler handles mentorship requests for the authenticated student.
type MentorshipHandler struct {
	deps MentorshipDependencies
}

// NewMentorshipHandler creates a new mentorship handler.
func NewMentorshipHandler(deps MentorshipDependencies) *MentorshipHandler {
	return &MentorshipHandler{deps: deps}
}

type registerRequest struct {
	MentorID      string `json:"mentorId" validate:"required"`
	CourseTitle   string `json:"courseTitle" validate:"required"`
	CoinCost      int    `json:"coinCost" validate:"gte=0"`
	TotalLectures int    `json:"totalLectures" validate:"gte=0"`
}

type progressRequest struct {
	MentorID    string `json:"mentorId" validate:"required_without=CourseTitle"`
	CourseTitle string `json:"courseTitle"`
	Lectures    int    `json:"lectures" validate:"gte=0"`
}

type completeRequest struct {
	MentorID    string `json:"mentorId" validate:"required_without=CourseTitle"`
	CourseTitle string `json:"courseTitle"`
}

// HandleRegister handles POST /mentorships.
func (h *MentorshipHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_mentorship"
	userID, _ := userFrom(r)

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	m, err := h.deps.RegisterMentorship(r.Context(), userID, req.MentorID, mentorship.Registration{
		CourseTitle:   req.CourseTitle,
		CoinCost:      req.CoinCost,
		TotalLectures: req.TotalLectures,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleProgress handles POST /mentorships/progress.
func (h *MentorshipHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.mentorship_progress"
	userID, _ := userFrom(r)

	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	res, err := h.deps.RecordProgress(r.Context(), userID, service.ProgressUpdate{
		MentorID:    req.MentorID,
		CourseTitle: req.CourseTitle,
		Lectures:    req.Lectures,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleComplete handles POST /mentorships/complete and returns the
// student's updated profile.
func (h *MentorshipHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	const op = "api.complete_mentorship"
	userID, _ := userFrom(r)

	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	p, err := h.deps.CompleteMentorship(r.Context(), userID, req.MentorID, req.CourseTitle)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
