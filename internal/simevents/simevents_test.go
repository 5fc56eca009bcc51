package simevents_test

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/simevents"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestBuildSnapshot(t *testing.T) {
	Convey("Given the synthetic chamber layout", t, func() {
		geo, err := simevents.BuildSnapshot()

		Convey("Then both endcap rings are populated", func() {
			So(err, ShouldBeNil)
			So(geo.Size(), ShouldEqual, 36)
		})
	})
}

func TestGenerateEvent(t *testing.T) {
	Convey("Given the event generator", t, func() {
		ev := simevents.GenerateEvent(3, 14, 159)

		Convey("Then the run coordinates carry through", func() {
			So(ev.Run, ShouldEqual, 3)
			So(ev.Lumi, ShouldEqual, 14)
			So(ev.Number, ShouldEqual, 159)
			So(ev.ID(), ShouldEqual, "3:14:159")
		})

		Convey("Then every collection a record needs is populated", func() {
			So(len(ev.Vertices), ShouldBeGreaterThan, 0)
			So(len(ev.Muons), ShouldBeGreaterThan, 0)
			So(len(ev.Electrons), ShouldBeGreaterThan, 0)
			So(len(ev.Jets), ShouldBeGreaterThan, 0)
			So(ev.METs, ShouldHaveLength, 1)
			So(len(ev.PFCandidates), ShouldBeGreaterThan, 0)
		})

		Convey("Then forward muons carry chamber matches on real chambers", func() {
			geo, err := simevents.BuildSnapshot()
			So(err, ShouldBeNil)

			// Generate until a forward muon shows up.
			var fwd *event.Muon
			for i := uint64(0); i < 200 && fwd == nil; i++ {
				gen := simevents.GenerateEvent(1, 1, i)
				for j := range gen.Muons {
					if math.Abs(gen.Muons[j].Eta) > 2.4 {
						fwd = &gen.Muons[j]
						break
					}
				}
			}
			So(fwd, ShouldNotBeNil)
			So(fwd.IsME0Muon, ShouldBeTrue)
			So(fwd.Chambers, ShouldNotBeEmpty)

			_, err = geo.Chamber(fwd.Chambers[0].ChamberID)
			So(err, ShouldBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a small simulation", t, func() {
		cfg := &simevents.Config{
			NumEvents:      50,
			Workers:        4,
			PoolSize:       4,
			ME0Variant:     "angle_eta",
			DuplicateEvery: 10,
			DrainTimeout:   10 * time.Second,
		}

		stats, err := simevents.Run(context.Background(), cfg)

		Convey("Then every unique event ends up as a record", func() {
			So(err, ShouldBeNil)
			So(stats.EventsGenerated, ShouldEqual, 50)
			So(stats.EventsSubmitted, ShouldEqual, 50)
			So(stats.RecordsStored, ShouldEqual, 50)
			So(stats.EventsDuplicate, ShouldBeGreaterThan, 0)
			So(stats.Duration, ShouldBeGreaterThan, 0)
		})
	})
}
