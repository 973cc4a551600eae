package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/mentorlink/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MENTORLINK_CONFIG",
	"MENTORLINK_ADDR",
	"MENTORLINK_QUEUE_SIZE",
	"MENTORLINK_WORKER_COUNT",
	"MENTORLINK_STORAGE_DRIVER",
	"MENTORLINK_BADGER_DIR",
	"MENTORLINK_TOKEN_TTL",
	"MENTORLINK_FEEDBACK_WEIGHT",
	"MENTORLINK_RANK_FULL_SUBTOPICS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "mentorlink.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StorageDriver, convey.ShouldEqual, config.StorageMemory)
				convey.So(cfg.RankFullSubtopics, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MENTORLINK_ADDR", ":8080")
			_ = os.Setenv("MENTORLINK_QUEUE_SIZE", "500")
			_ = os.Setenv("MENTORLINK_WORKER_COUNT", "3")
			_ = os.Setenv("MENTORLINK_TOKEN_TTL", "90m")
			_ = os.Setenv("MENTORLINK_FEEDBACK_WEIGHT", "0.25")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.TokenTTL, convey.ShouldEqual, 90*time.Minute)
				convey.So(cfg.FeedbackWeight, convey.ShouldEqual, 0.25)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
queue_size: 3000
worker_count: 6
rank_full_subtopics: 8
storage_driver: badger
badger_dir: /tmp/mentorlink
`)
			_ = os.Setenv("MENTORLINK_CONFIG", path)
			_ = os.Setenv("MENTORLINK_WORKER_COUNT", "12")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file which overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 3000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 12)
				convey.So(cfg.RankFullSubtopics, convey.ShouldEqual, 8)
				convey.So(cfg.StorageDriver, convey.ShouldEqual, config.StorageBadger)
				convey.So(cfg.DepthFullTopics, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("MENTORLINK_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MENTORLINK_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("MENTORLINK_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When badger is selected by env without a directory", func() {
			_ = os.Setenv("MENTORLINK_STORAGE_DRIVER", "badger")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
