package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("profile not found")
	ErrAlreadyExists  = errors.New("profile already exists")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
	ErrTooManyRetries = errors.New("transaction retries exhausted")
)
