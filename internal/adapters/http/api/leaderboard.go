package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/mentorlink/internal/domain/types"
)

const (
	defaultLeaderboardLimit = 10
	defaultLeaderboardMax   = 100
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	TopMentors(ctx context.Context, limit int) ([]types.RankEntry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /mentors/top?limit=N requests. The limit
// defaults to 10.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := defaultLeaderboardLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, WrapKind(op, ErrBadRequest, errLimitExceeded(h.maxLimit)))
		return
	}
	entries, err := h.deps.TopMentors(r.Context(), n)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if entries == nil {
		entries = []types.RankEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type errLimitExceeded int

func (e errLimitExceeded) Error() string {
	return "limit exceeds maximum of " + strconv.Itoa(int(e))
}
