// Package loadgen drives a running mentorlink server with concurrent traffic
// and checks the ranking invariants in what it reads back.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Secret   string        // JWT secret shared with the service
	Mentors  int           // Number of mentor profiles to seed
	Learners int           // Number of learner profiles to seed
	Feedback int           // Number of feedback submissions
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Seed for the generated data
	RunID    string        // Prefix for generated user ids; random when empty
	Verbose  bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	ProfilesCreated        int
	MentorshipsRegistered  int
	MentorshipsRejected    int
	FeedbackSubmitted      int
	FeedbackApplied        int
	FeedbackPending        int
	FeedbackFailed         int
	RecommendationsChecked int
	LeaderboardEntries     int
	StartTime              time.Time
	EndTime                time.Time
	Duration               time.Duration
}

// Recommendation mirrors one GET /recommendations row.
type Recommendation struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	MentorMatch []string `json:"mentorMatch"`
	Score       float64  `json:"score"`
}
