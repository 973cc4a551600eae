package realtime

import "errors"

// Sentinel kinds for realtime errors.
var (
	ErrNoRecipient = errors.New("message has no recipient")
	ErrHubStopped  = errors.New("hub stopped")

	ErrSubscriptionClosed = errors.New("redis subscription closed")
)
