// Package profile applies user edits to profiles and keeps the derived
// completion, verification and badge fields consistent.
package profile

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/okian/mentorlink/internal/domain/model"
	"github.com/okian/mentorlink/internal/domain/scoring"
)

// Badge names granted to verified profiles.
const (
	BadgePlatinum = "Platinum Mentor"
	BadgeGold     = "Gold Mentor"
	BadgeExplorer = "Verified Explorer"
)

const (
	verifiedThreshold = 80
	goldThreshold     = 90
	fullCompletion    = 100
)

// ErrEmailRequired is returned by New without an email.
var ErrEmailRequired = errors.New("email is required")

// Update carries a partial profile edit. Nil fields are left untouched.
type Update struct {
	FirstName      *string
	LastName       *string
	DOB            *string
	Gender         *string
	Bio            *string
	ProfilePicture *string
	Skills         *[]string
	LearningGoals  *[]string
	Courses        *[]string
	Subtopics      *[]model.Subtopic
}

// New creates a profile for id with the marketplace defaults.
func New(id, email, firstName, lastName string, now time.Time) (*model.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	p := model.NewProfile(id, now)
	p.Email = strings.ToLower(email)
	p.FirstName = strings.TrimSpace(firstName)
	p.LastName = strings.TrimSpace(lastName)
	RecomputeCompletion(p)
	return p, nil
}

// ApplyUpdate writes u into p and refreshes the derived fields.
func ApplyUpdate(p *model.Profile, u Update, now time.Time) {
	if u.FirstName != nil {
		p.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		p.LastName = strings.TrimSpace(*u.LastName)
	}
	if u.DOB != nil {
		p.DOB = strings.TrimSpace(*u.DOB)
	}
	if u.Gender != nil {
		p.Gender = strings.TrimSpace(*u.Gender)
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	// An empty picture never clears the existing one.
	if u.ProfilePicture != nil && *u.ProfilePicture != "" {
		p.ProfilePicture = *u.ProfilePicture
	}
	if u.Skills != nil {
		p.Skills = scoring.NormalizeList(*u.Skills)
	}
	if u.LearningGoals != nil {
		p.LearningGoals = scoring.NormalizeList(*u.LearningGoals)
	}
	if u.Courses != nil {
		p.Courses = scoring.NormalizeList(*u.Courses)
	}
	if u.Subtopics != nil {
		subs := make([]model.Subtopic, 0, len(*u.Subtopics))
		for _, st := range *u.Subtopics {
			subs = append(subs, model.Subtopic{
				Skill:  strings.TrimSpace(st.Skill),
				Topics: scoring.NormalizeList(st.Topics),
			})
		}
		p.Subtopics = subs
	}
	p.UpdatedAt = now
	RecomputeCompletion(p)
}

// RecomputeCompletion scores eight profile checks into a percentage and derives
// verification (>= 80% with skills and goals present) and the badge.
func RecomputeCompletion(p *model.Profile) {
	checks := []bool{
		p.FirstName != "",
		p.LastName != "",
		p.Email != "",
		p.DOB != "",
		p.Gender != "",
		p.ProfilePicture != "",
		len(p.Skills) > 0,
		len(p.LearningGoals) > 0,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	completion := int(math.Round(float64(filled) / float64(len(checks)) * 100))

	p.ProfileCompletion = completion
	p.Verified = completion >= verifiedThreshold && len(p.Skills) > 0 && len(p.LearningGoals) > 0
	p.Badge = ""
	if p.Verified {
		switch {
		case completion == fullCompletion:
			p.Badge = BadgePlatinum
		case completion >= goldThreshold:
			p.Badge = BadgeGold
		default:
			p.Badge = BadgeExplorer
		}
	}
}

// MatchesQuery reports whether q (case-insensitive) appears in the names or any skill.
func MatchesQuery(p *model.Profile, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.FirstName), q) || strings.Contains(strings.ToLower(p.LastName), q) {
		return true
	}
	for _, s := range p.Skills {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
