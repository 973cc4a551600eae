package scoring

import "github.com/okian/mentorlink/internal/domain/model"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDepthFullTopics sets the topic count for full depth in recommendations.
func WithDepthFullTopics(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.depthFullTopics = n
		}
	}
}

// WithRankFullSubtopics sets maxSubtopicsForFullScore for rank recomputation.
// The value is passed through as is; an invalid value makes rank computation
// fail, which ApplyFeedback answers with the rating-based fallback rank.
func WithRankFullSubtopics(n float64) Option {
	return func(e *Engine) {
		e.rankFullSubtopics = n
	}
}

// WithFeedbackWeight sets the weight of a new rating in the smoothing step.
func WithFeedbackWeight(w float64) Option {
	return func(e *Engine) {
		if w > 0 && w <= 1 {
			e.feedbackWeight = w
		}
	}
}

// Engine carries the tunable constants of the ranking engine. It is stateless
// and safe for concurrent use.
type Engine struct {
	depthFullTopics   int
	rankFullSubtopics float64
	feedbackWeight    float64
}

// NewEngine creates an engine with defaults overridden by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		depthFullTopics:   DefaultDepthFullTopics,
		rankFullSubtopics: DefaultMaxSubtopicsForFullScore,
		feedbackWeight:    DefaultFeedbackWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine() //nolint:gochecknoglobals // immutable defaults

// Rank runs ComputeMentorRank with the engine's full-score subtopic count.
func (e *Engine) Rank(mentor *model.Profile, learnerGoals []string) (RankResult, error) {
	return ComputeMentorRank(mentor, RankOptions{
		LearnerGoals:             learnerGoals,
		MaxSubtopicsForFullScore: e.rankFullSubtopics,
	})
}

// Recommend scores pool against the learner using the package defaults.
func Recommend(learner *model.Profile, pool []*model.Profile) []MatchResult {
	return defaultEngine.Recommend(learner, pool)
}

// ApplyFeedback smooths the mentor's rating with the default weight and recomputes its rank.
func ApplyFeedback(mentor *model.Profile, newRating float64, studentGoals []string) FeedbackOutcome {
	return defaultEngine.ApplyFeedback(mentor, newRating, studentGoals)
}
