package loadgen

import "time"

// Defaults used by the command line tool.
const (
	DefaultBaseURL  = "http://localhost:9080"
	DefaultMentors  = 20
	DefaultLearners = 60
	DefaultFeedback = 2000
	DefaultTimeout  = 30 * time.Second
)

// Bounds every rating and rank read back from the service must respect.
const (
	minRating = 1.0
	maxRating = 5.0
	minRank   = 1
	maxRank   = 5
)

const (
	percentageMultiplier = 100
	settleDelay          = 500 * time.Millisecond
)

var vocabulary = []string{"go", "python", "java", "rust", "sql", "kotlin", "react", "ml"}
