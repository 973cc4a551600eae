package api

import (
	"context"
	"net/http"

	"github.com/okian/mentorlink/internal/domain/model"
)

// SearchDependencies defines the mentor search operation.
type SearchDependencies interface {
	SearchMentors(ctx context.Context, userID, q string) ([]*model.Profile, error)
}

// SearchHandler handles mentor search requests.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// HandleSearch handles GET /mentors/search?q=term.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_mentors"
	userID, _ := userFrom(r)
	found, err := h.deps.SearchMentors(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if found == nil {
		found = []*model.Profile{}
	}
	writeJSON(w, http.StatusOK, found)
}
