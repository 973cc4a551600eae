package scoring_test

import (
	"math/rand"
	"testing"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(results []scoring.MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Candidate.ID
	}
	return out
}

func TestRecommend(t *testing.T) {
	Convey("Given a learner and a pool of candidates", t, func() {
		learner := model.NewProfile("learner", fixedNow)
		learner.Skills = []string{"go"}
		learner.LearningGoals = []string{"Go", "Python"}

		a := model.NewProfile("a", fixedNow)
		a.Skills = []string{"go"}
		a.Subtopics = []model.Subtopic{{Skill: "go", Topics: []string{"1", "2", "3", "4"}}}
		a.Rating = 5
		a.Rank = 4
		a.Verified = true
		a.ActiveMentees = 1

		b := &model.Profile{ID: "b", Skills: []string{"Go", "Python", "go"},
			Subtopics: []model.Subtopic{{Skill: "Python", Topics: []string{"1", "2", "3", "4"}}}}
		d := &model.Profile{ID: "d", Skills: []string{"Go", "Python", "go"},
			Subtopics: []model.Subtopic{{Skill: "Python", Topics: []string{"1", "2", "3", "4"}}}}

		c := model.NewProfile("c", fixedNow)
		c.Skills = []string{"java"}
		c.Subtopics = []model.Subtopic{{Skill: "java", Topics: []string{"1", "2", "3", "4", "5", "6", "7", "8"}}}
		c.Verified = true
		c.Rank = 5

		pool := []*model.Profile{c, b, learner, a, nil, d}
		results := scoring.Recommend(learner, pool)

		Convey("Then non-matching candidates and the learner are excluded", func() {
			So(ids(results), ShouldResemble, []string{"a", "b", "d"})
		})

		Convey("And the weighted score is computed per candidate", func() {
			// 0.45*0.5 + 0.25*0.5 + 0.15*0.8 + 0.15 + 5/50 + 0.05*0.8
			So(results[0].Score, ShouldAlmostEqual, 0.76, 1e-9)
			So(results[0].MentorMatch, ShouldResemble, []string{"go"})
			So(results[0].MentorCoverage, ShouldEqual, 0.5)
			So(results[0].Depth, ShouldEqual, 0.5)

			// 0.45*1 + 0.25*0.5 + 0.15*(3/5) + 0 + 0 + 0.05*1 with unset rank and capacity
			So(results[1].Score, ShouldAlmostEqual, 0.715, 1e-9)
			So(results[1].MentorMatch, ShouldResemble, []string{"go", "python"})
			So(results[1].MentorCoverage, ShouldEqual, 1)
			So(results[1].Depth, ShouldEqual, 0.5)
		})

		Convey("And equal scores keep encounter order", func() {
			So(results[1].Score, ShouldEqual, results[2].Score)
			So(results[1].Candidate.ID, ShouldEqual, "b")
			So(results[2].Candidate.ID, ShouldEqual, "d")
		})

		Convey("When a candidate has no subtopics for the matched skills", func() {
			e := &model.Profile{ID: "e", Skills: []string{"python"}, Rating: 5,
				Subtopics: []model.Subtopic{{Skill: "rust", Topics: []string{"1"}}}}
			out := scoring.Recommend(learner, []*model.Profile{e})

			Convey("Then depth falls back to the neutral prior", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].Depth, ShouldEqual, 0.35)
			})
		})

		Convey("When every boost stacks", func() {
			top := &model.Profile{ID: "top", Skills: []string{"go", "python"}, Rating: 5, Rank: 5, Verified: true,
				MaxMentees: 5, Subtopics: []model.Subtopic{
					{Skill: "go", Topics: []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
					{Skill: "python", Topics: []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
				}}
			out := scoring.Recommend(learner, []*model.Profile{top})

			Convey("Then the score is not clamped to 1", func() {
				So(out[0].Score, ShouldAlmostEqual, 1.15, 1e-9)
			})
		})

		Convey("When the mentor is fully booked", func() {
			a.ActiveMentees = 9
			out := scoring.Recommend(learner, []*model.Profile{a})

			Convey("Then availability contributes nothing", func() {
				So(out[0].Score, ShouldAlmostEqual, 0.72, 1e-9)
			})
		})

		Convey("When the learner has no goals", func() {
			learner.LearningGoals = nil
			So(scoring.Recommend(learner, pool), ShouldBeEmpty)
		})
	})
}

func TestRecommendProperties(t *testing.T) {
	Convey("Given random pools", t, func() {
		rng := rand.New(rand.NewSource(11)) //nolint:gosec // deterministic test data

		Convey("Then results are sorted and only contain matching candidates", func() {
			for round := 0; round < 100; round++ {
				learner := model.NewProfile("learner", fixedNow)
				learner.LearningGoals = randomGoals(rng)
				goalSet := map[string]bool{}
				for _, g := range scoring.LowerList(learner.LearningGoals) {
					goalSet[g] = true
				}

				pool := make([]*model.Profile, 0, 30)
				for i := 0; i < 30; i++ {
					pool = append(pool, randomProfile(rng, string(rune('a'+i%26))+string(rune('0'+i/26))))
				}

				out := scoring.Recommend(learner, pool)
				for i, r := range out {
					So(r.MentorMatch, ShouldNotBeEmpty)
					for _, s := range r.MentorMatch {
						So(goalSet[s], ShouldBeTrue)
					}
					if i > 0 {
						So(out[i-1].Score, ShouldBeGreaterThanOrEqualTo, r.Score)
					}
				}

				returned := map[*model.Profile]bool{}
				for _, r := range out {
					returned[r.Candidate] = true
				}
				for _, p := range pool {
					matches := false
					for _, s := range scoring.LowerList(p.Skills) {
						if goalSet[s] {
							matches = true
						}
					}
					So(returned[p], ShouldEqual, matches)
				}
			}
		})
	})
}

func TestEngineOptions(t *testing.T) {
	Convey("Given an engine with a smaller full-depth count", t, func() {
		learner := &model.Profile{ID: "l", LearningGoals: []string{"go"}}
		m := &model.Profile{ID: "m", Skills: []string{"go"}, Subtopics: []model.Subtopic{{Skill: "go", Topics: []string{"1", "2"}}}}

		def := scoring.Recommend(learner, []*model.Profile{m})
		tuned := scoring.NewEngine(scoring.WithDepthFullTopics(2)).Recommend(learner, []*model.Profile{m})

		Convey("Then depth saturates sooner", func() {
			So(def[0].Depth, ShouldEqual, 0.25)
			So(tuned[0].Depth, ShouldEqual, 1)
		})

		Convey("And invalid values keep the defaults", func() {
			same := scoring.NewEngine(scoring.WithDepthFullTopics(0), scoring.WithFeedbackWeight(2)).Recommend(learner, []*model.Profile{m})
			So(same[0].Depth, ShouldEqual, 0.25)
		})
	})
}
