// Package model contains domain models passed between layers.
package model

import "time"

// Profile defaults applied when a profile is created.
const (
	DefaultPoints     = 100
	DefaultRating     = 5.0
	DefaultRank       = 3
	DefaultMaxMentees = 5
)

// Subtopic declares the topics a person covers under one skill.
type Subtopic struct {
	Skill  string   `json:"skill"`
	Topics []string `json:"topics"`
}

// Profile is a user of the marketplace. Every user can both learn and mentor.
type Profile struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	DOB            string `json:"dob,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Bio            string `json:"bio,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`

	Skills           []string     `json:"skills"`
	LearningGoals    []string     `json:"learningGoals"`
	Courses          []string     `json:"courses"`
	CompletedCourses []string     `json:"completedCourses"`
	Subtopics        []Subtopic   `json:"subtopics"`
	Mentorships      []Mentorship `json:"mentorships"`

	Points        int     `json:"points"`
	Rating        float64 `json:"rating"`
	Rank          int     `json:"rank"`
	MaxMentees    int     `json:"maxMentees"`
	ActiveMentees int     `json:"activeMentees"`

	Verified          bool   `json:"verified"`
	Badge             string `json:"verificationBadge,omitempty"`
	ProfileCompletion int    `json:"profileCompletion"`

	// Version increases on every stored write.
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProfile returns a profile carrying the marketplace defaults.
func NewProfile(id string, now time.Time) *Profile {
	return &Profile{
		ID:               id,
		Skills:           []string{},
		LearningGoals:    []string{},
		Courses:          []string{},
		CompletedCourses: []string{},
		Subtopics:        []Subtopic{},
		Mentorships:      []Mentorship{},
		Points:           DefaultPoints,
		Rating:           DefaultRating,
		Rank:             DefaultRank,
		MaxMentees:       DefaultMaxMentees,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Skills = cloneStrings(p.Skills)
	c.LearningGoals = cloneStrings(p.LearningGoals)
	c.Courses = cloneStrings(p.Courses)
	c.CompletedCourses = cloneStrings(p.CompletedCourses)
	if p.Subtopics != nil {
		c.Subtopics = make([]Subtopic, len(p.Subtopics))
		for i, st := range p.Subtopics {
			c.Subtopics[i] = Subtopic{Skill: st.Skill, Topics: cloneStrings(st.Topics)}
		}
	}
	if p.Mentorships != nil {
		c.Mentorships = make([]Mentorship, len(p.Mentorships))
		for i, m := range p.Mentorships {
			c.Mentorships[i] = m.clone()
		}
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
