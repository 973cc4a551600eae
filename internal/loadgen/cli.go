package loadgen

import (
	"fmt"
	"os"

	"github.com/okian/mentorlink/pkg/logger"
)

// SetupLogging initializes the shared logger for the tool.
func SetupLogging(format string, verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if format != "" {
		if err := logger.SetFormat(format); err != nil {
			return err
		}
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Mentorlink Load Tool
====================

Seeds mentors and learners, registers mentorships, fires concurrent feedback
and checks that ratings, ranks, the leaderboard and recommendations stay
within bounds and in order.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -secret string
        JWT secret shared with the service (default $MENTORLINK_JWT_SECRET or "change-me")
  -mentors int
        Number of mentors to seed (default 20)
  -learners int
        Number of learners to seed (default 60)
  -feedback int
        Number of feedback submissions (default 2000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Seed for generated data (default 1)
  -format string
        Log format, json or text (default "json")
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run against a local server started with the default secret
  go run ./cmd/loadgen

  # Heavier run with more workers
  go run ./cmd/loadgen -secret dev-secret -feedback 20000 -workers 32
`)
}
