package repository

import (
	"github.com/okian/mentorlink/pkg/logger"
)

// Default store configuration constants.
const (
	defaultMaxRetries = 32
)

type settings struct {
	logger     logger.Logger
	maxRetries int
	inMemory   bool
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxRetries sets how often a conflicting badger transaction is retried.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithInMemory keeps badger data in memory only. The directory is ignored.
func WithInMemory() Option {
	return func(s *settings) {
		s.inMemory = true
	}
}

func newSettings(name string, opts []Option) settings {
	s := settings{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named(name)
	}
	return s
}
