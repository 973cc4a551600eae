package profile_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/profile"
	"github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

var now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	convey.Convey("Given signup data", t, func() {
		convey.Convey("When an email is present", func() {
			p, err := profile.New("u-1", " Ada@Example.com ", " Ada ", "Lovelace", now)

			convey.Convey("Then the profile starts with defaults and partial completion", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Email, convey.ShouldEqual, "ada@example.com")
				convey.So(p.FirstName, convey.ShouldEqual, "Ada")
				convey.So(p.Points, convey.ShouldEqual, 100)
				convey.So(p.ProfileCompletion, convey.ShouldEqual, 38) // 3 of 8
				convey.So(p.Verified, convey.ShouldBeFalse)
				convey.So(p.Badge, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When the email is blank", func() {
			_, err := profile.New("u-1", "  ", "", "", now)
			convey.So(errors.Is(err, profile.ErrEmailRequired), convey.ShouldBeTrue)
		})
	})
}

func TestApplyUpdate(t *testing.T) {
	convey.Convey("Given a new profile", t, func() {
		p, err := profile.New("u-1", "ada@example.com", "Ada", "Lovelace", now)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When lists and subtopics are edited", func() {
			later := now.Add(time.Hour)
			profile.ApplyUpdate(p, profile.Update{
				Skills:        ptr([]string{" Go ", "", "SQL"}),
				LearningGoals: ptr([]string{"rust"}),
				Subtopics:     ptr([]model.Subtopic{{Skill: " go ", Topics: []string{"channels", " ", "generics"}}}),
			}, later)

			convey.Convey("Then values are normalized and completion refreshed", func() {
				convey.So(p.Skills, convey.ShouldResemble, []string{"Go", "SQL"})
				convey.So(p.LearningGoals, convey.ShouldResemble, []string{"rust"})
				convey.So(p.Subtopics, convey.ShouldResemble, []model.Subtopic{{Skill: "go", Topics: []string{"channels", "generics"}}})
				convey.So(p.ProfileCompletion, convey.ShouldEqual, 63) // 5 of 8
				convey.So(p.UpdatedAt, convey.ShouldEqual, later)
			})
		})

		convey.Convey("When an empty picture is sent", func() {
			p.ProfilePicture = "pic.png"
			profile.ApplyUpdate(p, profile.Update{ProfilePicture: ptr("")}, now)
			convey.So(p.ProfilePicture, convey.ShouldEqual, "pic.png")
		})

		convey.Convey("When nil fields are sent", func() {
			before := p.Clone()
			profile.ApplyUpdate(p, profile.Update{}, now)
			convey.So(p.FirstName, convey.ShouldEqual, before.FirstName)
			convey.So(p.Skills, convey.ShouldResemble, before.Skills)
		})
	})
}

func TestRecomputeCompletion(t *testing.T) {
	convey.Convey("Given profiles at different completion levels", t, func() {
		p := model.NewProfile("u-1", now)
		p.FirstName, p.LastName, p.Email = "Ada", "Lovelace", "ada@example.com"
		p.Skills = []string{"go"}
		p.LearningGoals = []string{"rust"}

		convey.Convey("When five of eight checks pass", func() {
			profile.RecomputeCompletion(p)
			convey.So(p.ProfileCompletion, convey.ShouldEqual, 63)
			convey.So(p.Verified, convey.ShouldBeFalse)
		})

		convey.Convey("When seven of eight checks pass", func() {
			p.DOB, p.Gender = "1815-12-10", "f"
			profile.RecomputeCompletion(p)

			convey.Convey("Then the profile is verified as an explorer", func() {
				convey.So(p.ProfileCompletion, convey.ShouldEqual, 88)
				convey.So(p.Verified, convey.ShouldBeTrue)
				convey.So(p.Badge, convey.ShouldEqual, profile.BadgeExplorer)
			})
		})

		convey.Convey("When every check passes", func() {
			p.DOB, p.Gender, p.ProfilePicture = "1815-12-10", "f", "pic.png"
			profile.RecomputeCompletion(p)
			convey.So(p.ProfileCompletion, convey.ShouldEqual, 100)
			convey.So(p.Badge, convey.ShouldEqual, profile.BadgePlatinum)
		})

		convey.Convey("When completion is high but goals are missing", func() {
			p.DOB, p.Gender, p.ProfilePicture = "1815-12-10", "f", "pic.png"
			p.LearningGoals = nil
			profile.RecomputeCompletion(p)
			convey.So(p.ProfileCompletion, convey.ShouldEqual, 88)
			convey.So(p.Verified, convey.ShouldBeFalse)
			convey.So(p.Badge, convey.ShouldEqual, "")
		})
	})
}

func TestMatchesQuery(t *testing.T) {
	convey.Convey("Given a mentor", t, func() {
		p := &model.Profile{FirstName: "Grace", LastName: "Hopper", Skills: []string{"COBOL", "Compilers"}}

		convey.So(profile.MatchesQuery(p, "grace"), convey.ShouldBeTrue)
		convey.So(profile.MatchesQuery(p, "HOP"), convey.ShouldBeTrue)
		convey.So(profile.MatchesQuery(p, "compil"), convey.ShouldBeTrue)
		convey.So(profile.MatchesQuery(p, ""), convey.ShouldBeTrue)
		convey.So(profile.MatchesQuery(p, "rust"), convey.ShouldBeFalse)
	})
}
