package scoring

import (
	"fmt"
	"math"

	"github.com/okian/mentorlink/internal/domain/model"
)

// Rank formula constants.
const (
	DefaultMaxSubtopicsForFullScore = 10

	skillMatchWeight    = 0.5
	subtopicDepthWeight = 0.3
	ratingWeight        = 0.2

	// skillMatchNoGoals applies when the learner has no goals but the mentor has skills.
	skillMatchNoGoals = 0.5
	// priorRating stands in for a mentor rating that was never set.
	priorRating = 3.0

	minRank = 1
	maxRank = 5
)

// RankOptions parameterizes ComputeMentorRank.
type RankOptions struct {
	LearnerGoals []string
	// MaxSubtopicsForFullScore is the topic count at which one subtopic entry
	// earns full depth. Zero selects DefaultMaxSubtopicsForFullScore.
	MaxSubtopicsForFullScore float64
}

// Components are the weighted inputs of the rank score, rounded to 3 decimals.
type Components struct {
	SkillMatch    float64 `json:"skillMatch"`
	SubtopicDepth float64 `json:"subtopicDepth"`
	RatingNorm    float64 `json:"ratingNorm"`
}

// RankResult is the outcome of ComputeMentorRank.
type RankResult struct {
	Rank       int        `json:"rank"`
	Score      float64    `json:"score"`
	Components Components `json:"components"`
}

// ComputeMentorRank maps a mentor to a 1..5 star rank:
//
//	score = 0.5*skillMatch + 0.3*subtopicDepth + 0.2*ratingNorm  (clamped to [0,1])
//	rank  = round(1 + 4*score)                                    (clamped to 1..5)
//
// skillMatch is the share of learner goals the mentor teaches. subtopicDepth
// averages min(1, topics/MaxSubtopicsForFullScore) over entries with at least one
// topic and is 0 without any. ratingNorm maps the [1,5] rating onto [0,1].
// The returned score is rounded to 4 decimals; rank uses the unrounded score.
func ComputeMentorRank(mentor *model.Profile, opts RankOptions) (RankResult, error) {
	full := opts.MaxSubtopicsForFullScore
	if full == 0 {
		full = DefaultMaxSubtopicsForFullScore
	}
	if !finite(full) || full < 0 {
		return RankResult{}, fmt.Errorf("%w: maxSubtopicsForFullScore %v", ErrInvalidRankInput, full)
	}
	if mentor == nil {
		return RankResult{}, fmt.Errorf("%w: nil mentor", ErrInvalidRankInput)
	}

	rating := mentor.Rating
	if rating == 0 {
		rating = priorRating
	}
	if !finite(rating) {
		return RankResult{}, fmt.Errorf("%w: rating %v", ErrInvalidRankInput, rating)
	}

	goals := LowerList(opts.LearnerGoals)
	skills, _ := lowerSet(mentor.Skills)

	skillMatch := 0.0
	switch {
	case len(goals) > 0:
		goalSet := make(map[string]struct{}, len(goals))
		for _, g := range goals {
			goalSet[g] = struct{}{}
		}
		matched := 0
		for _, s := range skills {
			if _, ok := goalSet[s]; ok {
				matched++
			}
		}
		skillMatch = clamp(float64(matched)/float64(len(goals)), 0, 1)
	case len(skills) > 0:
		skillMatch = skillMatchNoGoals
	}

	var depthTotal float64
	depthCount := 0
	for _, st := range mentor.Subtopics {
		if n := topicCount(st.Topics); n > 0 {
			depthTotal += math.Min(1, float64(n)/full)
			depthCount++
		}
	}
	subtopicDepth := 0.0
	if depthCount > 0 {
		subtopicDepth = depthTotal / float64(depthCount)
	}

	ratingNorm := clamp((rating-1)/4, 0, 1)

	score := clamp(skillMatch*skillMatchWeight+subtopicDepth*subtopicDepthWeight+ratingNorm*ratingWeight, 0, 1)
	rank := int(clamp(math.Round(1+score*4), minRank, maxRank))

	return RankResult{
		Rank:  rank,
		Score: roundTo(score, 4),
		Components: Components{
			SkillMatch:    roundTo(skillMatch, 3),
			SubtopicDepth: roundTo(subtopicDepth, 3),
			RatingNorm:    roundTo(ratingNorm, 3),
		},
	}, nil
}
