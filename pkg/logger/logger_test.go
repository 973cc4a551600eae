package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	convey.Convey("Given an initialized logger", t, func() {
		convey.So(Init(), convey.ShouldBeNil)

		convey.Convey("Then Get returns a usable logger", func() {
			l := Get()
			convey.So(l, convey.ShouldNotBeNil)
			convey.So(func() { l.Info(context.Background(), "test message", String("k", "v")) }, convey.ShouldNotPanic)
		})

		convey.Convey("And Sync is a no-op", func() {
			convey.So(Sync(), convey.ShouldBeNil)
		})
	})
}

func TestLoggerNamedAndWith(t *testing.T) {
	convey.Convey("Given a named logger with bound fields", t, func() {
		convey.So(Init(), convey.ShouldBeNil)
		l := Named("feedback").With(String("mentorID", "m-1"), Bool("fallback", false))

		convey.Convey("Then every field constructor logs without panicking", func() {
			convey.So(func() {
				l.Warn(context.Background(), "rank fallback",
					Int("rank", 3),
					Float64("rating", 4.2),
					Duration("took", 15*time.Millisecond),
					Any("goals", []string{"go"}),
					Error(errors.New("boom")),
				)
			}, convey.ShouldNotPanic)
		})
	})
}

func TestSetFormat(t *testing.T) {
	convey.Convey("Given the format switch", t, func() {
		convey.So(Init(), convey.ShouldBeNil)

		convey.Convey("Then json and text are accepted", func() {
			convey.So(SetFormat(FormatJSON), convey.ShouldBeNil)
			convey.So(SetFormat(FormatText), convey.ShouldBeNil)
		})

		convey.Convey("And an unknown format is rejected", func() {
			convey.So(SetFormat("xml"), convey.ShouldNotBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	convey.Convey("Given level strings", t, func() {
		convey.So(Init(), convey.ShouldBeNil)

		convey.So(SetLevelString("debug"), convey.ShouldBeNil)
		convey.So(levelVar.Level(), convey.ShouldEqual, slog.LevelDebug)

		convey.So(SetLevelString("WARNING"), convey.ShouldBeNil)
		convey.So(levelVar.Level(), convey.ShouldEqual, slog.LevelWarn)

		convey.So(SetLevelString(""), convey.ShouldBeNil)
		convey.So(levelVar.Level(), convey.ShouldEqual, slog.LevelInfo)

		convey.So(SetLevelString("verbose"), convey.ShouldNotBeNil)
	})
}
