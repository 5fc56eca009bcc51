package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given the metrics manager", t, func() {
		Convey("When creating with default options", func() {
			m := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it is created with the pipeline namespace", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "phasetwo")
				So(m.subsystem, ShouldEqual, "selection")
			})
		})

		Convey("When creating with custom options", func() {
			m := NewManager(
				WithNamespace("custom"),
				WithSubsystem("pipeline"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the options apply", func() {
				So(m.namespace, ShouldEqual, "custom")
				So(m.subsystem, ShouldEqual, "pipeline")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
			})
		})
	})
}

func TestPackageRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("When recording pipeline activity", func() {
			So(func() {
				RecordEventProcessed()
				RecordEventDuplicate()
				RecordEventNoVertex()
				RecordAssemblyLatency(1.5)
				RecordObjectSelected("muon")
				RecordObjectSelected("electron")
				RecordObjectSelected("jet")
				RecordGeometryMiss()
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(4)
				RecordWorkerError()
				UpdateRecordsHeld(12)
			}, ShouldNotPanic)
		})

		Convey("When scraping the handler", func() {
			RecordEventProcessed()

			rr := httptest.NewRecorder()
			Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the pipeline metrics are exposed", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				So(rr.Body.String(), ShouldContainSubstring, "phasetwo_selection_events_processed_total")
				So(rr.Body.String(), ShouldContainSubstring, "phasetwo_selection_queue_size")
			})
		})
	})
}
