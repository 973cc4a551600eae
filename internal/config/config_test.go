package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/mentorlink/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.StorageDriver, convey.ShouldEqual, config.StorageMemory)
			convey.So(cfg.TokenTTL, convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.DepthFullTopics, convey.ShouldEqual, 8)
			convey.So(cfg.RankFullSubtopics, convey.ShouldEqual, 10)
			convey.So(cfg.FeedbackWeight, convey.ShouldEqual, 0.15)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When addr is empty", func() {
			cfg.Addr = ""
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
		})

		convey.Convey("When the storage driver is unknown", func() {
			cfg.StorageDriver = "postgres"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When badger is selected without a directory", func() {
			cfg.StorageDriver = config.StorageBadger
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)

			cfg.BadgerDir = t.TempDir()
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the feedback weight is out of range", func() {
			for _, w := range []float64{0, -0.1, 1.01} {
				cfg.FeedbackWeight = w
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			}
			cfg.FeedbackWeight = 1
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the jwt secret is empty", func() {
			cfg.JWTSecret = ""
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrMissingSecret), convey.ShouldBeTrue)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
