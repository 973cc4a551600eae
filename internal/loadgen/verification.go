package loadgen

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/types"
	"github.com/okian/mentorlink/pkg/logger"
)

const maxLeaderboardRequest = 100

func validRating(v float64) bool { return v >= minRating && v <= maxRating }
func validRank(v int) bool       { return v >= minRank && v <= maxRank }

// verifyFeedback checks the rating and rank returned for every applied
// submission.
func (r *Runner) verifyFeedback(results []model.FeedbackResult) {
	for _, res := range results {
		if !validRating(res.Rating) {
			r.violate("feedback for %s returned rating %.4f", res.MentorID, res.Rating)
		}
		if !validRank(res.Rank) {
			r.violate("feedback for %s returned rank %d", res.MentorID, res.Rank)
		}
	}
}

// verifyMentors reads every mentor's rank and the leaderboard back and checks
// bounds and ordering.
func (r *Runner) verifyMentors(ctx context.Context, plan *Plan, stats *Stats) error {
	if len(plan.Mentors) == 0 {
		return nil
	}
	caller := plan.Mentors[0].ID

	var failed []error
	r.pool(len(plan.Mentors), func(i int) {
		id := plan.Mentors[i].ID
		var entry types.RankEntry
		status, err := r.client.Do(ctx, http.MethodGet, "/mentors/"+id+"/rank", caller, nil, &entry)
		if err != nil || status != http.StatusOK {
			r.mu.Lock()
			failed = append(failed, fmt.Errorf("rank for %s: status %d: %v", id, status, err))
			r.mu.Unlock()
			return
		}
		if !validRating(entry.Rating) {
			r.violate("mentor %s has rating %.4f", id, entry.Rating)
		}
		if !validRank(entry.Rank) {
			r.violate("mentor %s has rank %d", id, entry.Rank)
		}
		if entry.Position < 1 {
			r.violate("mentor %s has position %d", id, entry.Position)
		}
	})
	if len(failed) > 0 {
		return failed[0]
	}

	limit := min(len(plan.Mentors), maxLeaderboardRequest)
	var top []types.RankEntry
	status, err := r.client.Do(ctx, http.MethodGet, fmt.Sprintf("/mentors/top?limit=%d", limit), caller, nil, &top)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("leaderboard: unexpected status %d", status)
	}
	stats.LeaderboardEntries = len(top)
	checkLeaderboard(top, r.violate)

	r.log.Info(ctx, "mentor ranks verified",
		logger.Int("mentors", len(plan.Mentors)),
		logger.Int("leaderboard_entries", len(top)))
	return nil
}

// checkLeaderboard reports entries that are out of order. Rows are ordered
// by rank then rating, both descending, with positions counting from 1.
func checkLeaderboard(top []types.RankEntry, violate func(string, ...any)) {
	for i, e := range top {
		if e.Position != i+1 {
			violate("leaderboard row %d has position %d", i, e.Position)
		}
		if i == 0 {
			continue
		}
		prev := top[i-1]
		if prev.Rank < e.Rank || (prev.Rank == e.Rank && prev.Rating < e.Rating) {
			violate("leaderboard rows %d and %d are out of order", i-1, i)
		}
	}
}

// verifyRecommendations checks every learner's recommendations are sorted
// and only contain mentors that match a goal.
func (r *Runner) verifyRecommendations(ctx context.Context, plan *Plan, stats *Stats) error {
	var failed []error
	var checked int
	r.pool(len(plan.Learners), func(i int) {
		l := plan.Learners[i]
		var recs []Recommendation
		status, err := r.client.Do(ctx, http.MethodGet, "/recommendations", l.ID, nil, &recs)
		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil || status != http.StatusOK {
			failed = append(failed, fmt.Errorf("recommendations for %s: status %d: %v", l.ID, status, err))
			return
		}
		checked++
		r.violations = append(r.violations, checkRecommendations(l.ID, recs)...)
	})
	stats.RecommendationsChecked = checked
	if len(failed) > 0 {
		return failed[0]
	}
	r.log.Info(ctx, "recommendations verified", logger.Int("learners", checked))
	return nil
}

func checkRecommendations(learnerID string, recs []Recommendation) []string {
	var out []string
	for i, rec := range recs {
		if len(rec.MentorMatch) == 0 {
			out = append(out, fmt.Sprintf("recommendation %s for %s has no matched skills", rec.User.ID, learnerID))
		}
		if rec.User.ID == learnerID {
			out = append(out, fmt.Sprintf("learner %s was recommended to themselves", learnerID))
		}
		if i > 0 && recs[i-1].Score < rec.Score {
			out = append(out, fmt.Sprintf("recommendations for %s are not sorted at %d", learnerID, i))
		}
	}
	return out
}
