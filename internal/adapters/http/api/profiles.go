package api

import (
	"context"
	"net/http"

	service "github.com/okian/mentorlink/internal/app"
	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/profile"
)

// ProfileDependencies defines the profile operations.
type ProfileDependencies interface {
	CreateProfile(ctx context.Context, userID string, in service.NewProfile) (*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id string, u profile.Update) (*model.Profile, error)
}

// ProfileHandler handles profile requests for the authenticated user.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type createProfileRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type subtopicRequest struct {
	Skill  string     `json:"skill" validate:"required"`
	Topics StringList `json:"topics"`
}

// updateProfileRequest is a partial edit; absent fields are left untouched.
type updateProfileRequest struct {
	FirstName      *string            `json:"firstName" validate:"omitempty,max=100"`
	LastName       *string            `json:"lastName" validate:"omitempty,max=100"`
	DOB            *string            `json:"dob"`
	Gender         *string            `json:"gender"`
	Bio            *string            `json:"bio" validate:"omitempty,max=2000"`
	ProfilePicture *string            `json:"profilePicture"`
	Skills         *StringList        `json:"skills"`
	LearningGoals  *StringList        `json:"learningGoals"`
	Courses        *StringList        `json:"courses"`
	Subtopics      *[]subtopicRequest `json:"subtopics" validate:"omitempty,dive"`
}

func (req *updateProfileRequest) toUpdate() profile.Update {
	u := profile.Update{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DOB:            req.DOB,
		Gender:         req.Gender,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Skills:         req.Skills.Strings(),
		LearningGoals:  req.LearningGoals.Strings(),
		Courses:        req.Courses.Strings(),
	}
	if req.Subtopics != nil {
		subs := make([]model.Subtopic, 0, len(*req.Subtopics))
		for _, st := range *req.Subtopics {
			subs = append(subs, model.Subtopic{Skill: st.Skill, Topics: st.Topics})
		}
		u.Subtopics = &subs
	}
	return u
}

// HandleCreate handles POST /profiles.
func (h *ProfileHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_profile"
	userID, _ := userFrom(r)

	var req createProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	p, err := h.deps.CreateProfile(r.Context(), userID, service.NewProfile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGetMe handles GET /me.
func (h *ProfileHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_me"
	userID, _ := userFrom(r)
	p, err := h.deps.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdateMe handles PATCH /me.
func (h *ProfileHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_me"
	userID, _ := userFrom(r)

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	p, err := h.deps.UpdateProfile(r.Context(), userID, req.toUpdate())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
