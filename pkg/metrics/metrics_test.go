package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// valueOf reads the current value of a counter or gauge.
func valueOf(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every metric is registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.feedbackProcessed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_feedback_processed_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "mentorlink")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording feedback metrics", func() {
			before := valueOf(globalManager.feedbackProcessed)
			RecordFeedbackProcessed()

			Convey("Then the counter moves", func() {
				So(valueOf(globalManager.feedbackProcessed), ShouldEqual, before+1)
			})

			Convey("And the rest of the pipeline helpers do not panic", func() {
				So(func() {
					RecordFeedbackDuplicate()
					RecordFeedbackFailed()
					RecordRankFallback()
					RecordFeedbackLatency(1.5)
					RecordRecommendation(2.5, 3)
					RecordMentorshipEvent("registered")
				}, ShouldNotPanic)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateWorkerCount(4)
			UpdateMentorsIndexed(12)
			UpdateProfilesTotal(20)
			UpdateWebsocketClients(2)

			Convey("Then they hold the last value", func() {
				So(valueOf(globalManager.queueSize), ShouldEqual, 7)
				So(valueOf(globalManager.queueCapacity), ShouldEqual, 100)
				So(valueOf(globalManager.workerCount), ShouldEqual, 4)
				So(valueOf(globalManager.mentorsIndexed), ShouldEqual, 12)
				So(valueOf(globalManager.profilesTotal), ShouldEqual, 20)
				So(valueOf(globalManager.websocketClients), ShouldEqual, 2)
			})
		})

		Convey("When recording labelled metrics", func() {
			RecordStoreConflict("badger")
			RecordChatPublish("local")
			RecordHTTPRequest("/feedback", "POST", "200")
			RecordErrorByComponent("queue", "full")

			Convey("Then the label series exist", func() {
				So(valueOf(globalManager.storeConflicts.WithLabelValues("badger")), ShouldBeGreaterThanOrEqualTo, 1)
				So(valueOf(globalManager.chatPublishes.WithLabelValues("local")), ShouldBeGreaterThanOrEqualTo, 1)
				So(valueOf(globalManager.httpRequests.WithLabelValues("/feedback", "POST", "200")), ShouldBeGreaterThanOrEqualTo, 1)
				So(valueOf(globalManager.errorsByComponent.WithLabelValues("queue", "full")), ShouldBeGreaterThanOrEqualTo, 1)
			})

			Convey("And histogram helpers do not panic", func() {
				So(func() {
					RecordStoreLatency("memory", "txn", 0.2)
					RecordHTTPRequestDuration("/feedback", "POST", "200", 3)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
				}, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
