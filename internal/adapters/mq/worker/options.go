package worker

import (
	"github.com/okian/mentorlink/pkg/logger"
)

// Option applies a configuration option to the FeedbackWorker.
type Option func(*FeedbackWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *FeedbackWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *FeedbackWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
