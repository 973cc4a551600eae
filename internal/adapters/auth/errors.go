package auth

import "errors"

// Sentinel kinds for authentication errors.
var (
	ErrMissingSecret = errors.New("jwt secret is required")
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
)
