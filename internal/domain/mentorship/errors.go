package mentorship

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInsufficientCoins  = errors.New("not enough coins to register")
	ErrMentorFull         = errors.New("mentor slots full")
	ErrMentorshipNotFound = errors.New("mentorship not found")
	ErrAlreadyActive      = errors.New("mentorship already active")
	ErrSelfMentorship     = errors.New("cannot register with yourself")
	ErrInvalidRequest     = errors.New("invalid mentorship request")
)
