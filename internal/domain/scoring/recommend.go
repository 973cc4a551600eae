package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/mentorlink/internal/domain/model"
)

// Recommendation score weights.
const (
	coverageWeight     = 0.45
	depthWeight        = 0.25
	rankNormWeight     = 0.15
	availabilityWeight = 0.05
	verificationBoost  = 0.15
	ratingBoostDivisor = 50.0

	// coverageNoGoals applies when the learner has no goals but the candidate has skills.
	coverageNoGoals = 0.5
	priorRank       = 3
	priorMaxMentees = model.DefaultMaxMentees
)

// MatchResult is one recommended mentor. It is computed per request and never stored.
type MatchResult struct {
	Candidate      *model.Profile `json:"user"`
	MentorMatch    []string       `json:"mentorMatch"`
	MentorCoverage float64        `json:"mentorCoverage"`
	Depth          float64        `json:"depth"`
	Score          float64        `json:"score"`
}

// Recommend scores every candidate in pool except the learner:
//
//	score = 0.45*coverage + 0.25*depth + 0.15*rank/5 + 0.15*verified + rating/50 + 0.05*availability
//
// The score is not clamped and can exceed 1. Candidates teaching none of the
// learner's goals are dropped. The result is stable-sorted by score, highest first.
func (e *Engine) Recommend(learner *model.Profile, pool []*model.Profile) []MatchResult {
	var goals []string
	learnerID := ""
	if learner != nil {
		goals = LowerList(learner.LearningGoals)
		learnerID = learner.ID
	}
	goalSet := make(map[string]struct{}, len(goals))
	for _, g := range goals {
		goalSet[g] = struct{}{}
	}

	out := make([]MatchResult, 0, len(pool))
	for _, c := range pool {
		if c == nil || (learnerID != "" && c.ID == learnerID) {
			continue
		}
		r, ok := e.score(c, goals, goalSet)
		if !ok {
			continue
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b MatchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// score reports false when the candidate matches none of the goals.
func (e *Engine) score(c *model.Profile, goals []string, goalSet map[string]struct{}) (MatchResult, bool) {
	skills, _ := lowerSet(c.Skills)

	match := make([]string, 0, len(skills))
	matchSet := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if _, ok := goalSet[s]; ok {
			match = append(match, s)
			matchSet[s] = struct{}{}
		}
	}
	if len(match) == 0 {
		return MatchResult{}, false
	}

	depth := EstimateDepth(c.Subtopics, matchSet, e.depthFullTopics)

	coverage := 0.0
	switch {
	case len(goals) > 0:
		coverage = float64(len(match)) / float64(len(goals))
	case len(skills) > 0:
		coverage = coverageNoGoals
	}

	boost := 0.0
	if c.Verified {
		boost = verificationBoost
	}

	rank := c.Rank
	if rank == 0 {
		rank = priorRank
	}
	maxMentees := c.MaxMentees
	if maxMentees <= 0 {
		maxMentees = priorMaxMentees
	}
	availability := 1 - math.Min(1, float64(c.ActiveMentees)/float64(maxMentees))

	score := coverage*coverageWeight +
		depth*depthWeight +
		float64(rank)/5*rankNormWeight +
		boost +
		c.Rating/ratingBoostDivisor +
		availability*availabilityWeight

	return MatchResult{
		Candidate:      c,
		MentorMatch:    match,
		MentorCoverage: roundTo(coverage, 2),
		Depth:          roundTo(depth, 2),
		Score:          roundTo(score, 3),
	}, true
}
