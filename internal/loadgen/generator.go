package loadgen

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// MentorSeed describes a mentor profile to create.
type MentorSeed struct {
	ID        string
	FirstName string
	Skills    []string
	Subtopics []SubtopicSeed
}

// SubtopicSeed is one skill with the topics the mentor covers.
type SubtopicSeed struct {
	Skill  string   `json:"skill"`
	Topics []string `json:"topics"`
}

// LearnerSeed describes a learner and the mentors they sign up with.
type LearnerSeed struct {
	ID      string
	Goals   []string
	Mentors []string
}

// FeedbackEvent is one rating a learner gives a mentor.
type FeedbackEvent struct {
	LearnerID string
	MentorID  string
	Rating    float64
	Key       string
}

// Plan is the full set of generated traffic for a run.
type Plan struct {
	Mentors  []MentorSeed
	Learners []LearnerSeed
	Feedback []FeedbackEvent
}

// GeneratePlan builds a deterministic plan from cfg.Seed. Feedback is only
// generated for learner/mentor pairs that are registered.
func GeneratePlan(cfg *Config) *Plan {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible load data
	prefix := cfg.RunID

	plan := &Plan{}
	for i := 0; i < cfg.Mentors; i++ {
		m := MentorSeed{
			ID:        fmt.Sprintf("%s-mentor-%03d", prefix, i),
			FirstName: fmt.Sprintf("Mentor%03d", i),
		}
		for _, skill := range pick(rng, 1+rng.IntN(3)) {
			m.Skills = append(m.Skills, skill)
			st := SubtopicSeed{Skill: skill}
			for j := rng.IntN(12); j > 0; j-- {
				st.Topics = append(st.Topics, fmt.Sprintf("%s-topic-%d", skill, j))
			}
			m.Subtopics = append(m.Subtopics, st)
		}
		plan.Mentors = append(plan.Mentors, m)
	}

	for i := 0; i < cfg.Learners; i++ {
		l := LearnerSeed{
			ID:    fmt.Sprintf("%s-learner-%03d", prefix, i),
			Goals: pick(rng, 1+rng.IntN(3)),
		}
		if len(plan.Mentors) > 0 {
			seen := map[int]bool{}
			for j := 1 + rng.IntN(3); j > 0; j-- {
				k := rng.IntN(len(plan.Mentors))
				if seen[k] {
					continue
				}
				seen[k] = true
				l.Mentors = append(l.Mentors, plan.Mentors[k].ID)
			}
		}
		plan.Learners = append(plan.Learners, l)
	}

	pairs := make([][2]string, 0)
	for _, l := range plan.Learners {
		for _, m := range l.Mentors {
			pairs = append(pairs, [2]string{l.ID, m})
		}
	}
	if len(pairs) == 0 {
		return plan
	}
	for i := 0; i < cfg.Feedback; i++ {
		pair := pairs[rng.IntN(len(pairs))]
		plan.Feedback = append(plan.Feedback, FeedbackEvent{
			LearnerID: pair[0],
			MentorID:  pair[1],
			Rating:    float64(10+rng.IntN(41)) / 10,
			Key:       fmt.Sprintf("%s-fb-%06d", prefix, i),
		})
	}
	return plan
}

// pick returns n distinct skills from the vocabulary.
func pick(rng *rand.Rand, n int) []string {
	idx := rng.Perm(len(vocabulary))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, vocabulary[i])
	}
	return out
}

func email(id string) string {
	return strings.ToLower(id) + "@loadgen.local"
}
