package api

import (
	"context"
	"net/http"

	"github.com/okian/mentorlink/internal/domain/scoring"
)

// RecommendationDependencies defines the recommendation operation.
type RecommendationDependencies interface {
	Recommend(ctx context.Context, learnerID string) ([]scoring.MatchResult, error)
}

// RecommendationHandler handles recommendation requests.
type RecommendationHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps RecommendationDependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps}
}

// HandleGetRecommendations handles GET /recommendations. Mentors are ordered
// by descending score.
func (h *RecommendationHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	userID, _ := userFrom(r)
	results, err := h.deps.Recommend(r.Context(), userID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if results == nil {
		results = []scoring.MatchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
