package service

import (
	"errors"
	"fmt"

	"github.com/okian/mentorlink/internal/adapters/repository"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrSelfFeedback       = errors.New("cannot rate yourself")
	ErrDuplicateFeedback  = errors.New("feedback already submitted")
	ErrQueueFull          = errors.New("feedback queue full")
	ErrFeedbackTimeout    = errors.New("feedback not applied in time")
	ErrReceiverUnverified = errors.New("receiver is not verified")
)

// translate maps repository errors onto service errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrProfileNotFound, err)
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", ErrProfileExists, err)
	}
	return err
}
