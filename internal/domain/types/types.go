// Package types contains common types used across the application
package types

// RankEntry is one row of the mentor leaderboard.
type RankEntry struct {
	Position int     `json:"position"`
	MentorID string  `json:"mentorId"`
	Name     string  `json:"name"`
	Rank     int     `json:"rank"`
	Rating   float64 `json:"rating"`
}
