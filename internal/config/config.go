// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New(ctx) builds a Config holding every default.
//   - Load(ctx) layers a YAML file and MENTORLINK_* env vars on top and validates the result.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Storage drivers accepted by StorageDriver.
const (
	StorageMemory = "memory"
	StorageBadger = "badger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the feedback queue across all shards.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of feedback shards, one worker each.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the feedback idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StorageDriver is memory or badger.
	StorageDriver string `koanf:"storage_driver"`

	// BadgerDir is the badger data directory; required for the badger driver.
	BadgerDir string `koanf:"badger_dir"`

	// JWTSecret signs and verifies bearer tokens (HS256).
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of tokens minted by GenerateToken.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// RedisAddr enables the cross-instance chat bridge when set.
	RedisAddr string `koanf:"redis_addr"`

	// RedisChannelPrefix namespaces chat channels.
	RedisChannelPrefix string `koanf:"redis_channel_prefix"`

	// DepthFullTopics is the topic count at which a subtopic entry earns full depth in recommendations.
	DepthFullTopics int `koanf:"depth_full_topics"`

	// RankFullSubtopics is the topic count at which a subtopic entry earns full depth in the rank formula.
	RankFullSubtopics int `koanf:"rank_full_subtopics"`

	// FeedbackWeight is the weight of a new rating in the exponential smoothing.
	FeedbackWeight float64 `koanf:"feedback_weight"`

	// MaxLeaderboardLimit caps GET /mentors/top?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MaxSearchResults caps GET /mentors/search and GET /chat/students.
	MaxSearchResults int `koanf:"max_search_results"`

	// RateLimitPerMinute bounds write requests per client IP; 0 disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          100_000,
		StorageDriver:       StorageMemory,
		BadgerDir:           "",
		JWTSecret:           "change-me",
		TokenTTL:            24 * time.Hour,
		RedisAddr:           "",
		RedisChannelPrefix:  "mentorlink:",
		DepthFullTopics:     8,
		RankFullSubtopics:   10,
		FeedbackWeight:      0.15,
		MaxLeaderboardLimit: 100,
		MaxSearchResults:    50,
		RateLimitPerMinute:  120,
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StorageDriver != StorageMemory && c.StorageDriver != StorageBadger:
		return fmt.Errorf("%w: unknown storage_driver %q", ErrInvalidConfig, c.StorageDriver)
	case c.StorageDriver == StorageBadger && c.BadgerDir == "":
		return fmt.Errorf("%w: badger_dir is required for the badger driver", ErrInvalidConfig)
	case c.FeedbackWeight <= 0 || c.FeedbackWeight > 1:
		return fmt.Errorf("%w: feedback_weight must be in (0,1]", ErrInvalidConfig)
	case c.QueueSize <= 0 || c.WorkerCount <= 0:
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	case c.DepthFullTopics <= 0 || c.RankFullSubtopics <= 0:
		return fmt.Errorf("%w: depth_full_topics and rank_full_subtopics must be positive", ErrInvalidConfig)
	case c.JWTSecret == "":
		return ErrMissingSecret
	}
	return nil
}
