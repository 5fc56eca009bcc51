package me0_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/me0"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
)

func TestAngleEtaCutsFor(t *testing.T) {
	Convey("Given the angle/eta cut tables", t, func() {
		Convey("When resolving loose cuts at low momentum", func() {
			cuts := me0.AngleEtaCutsFor(types.TierLoose, 10)

			Convey("Then phi and bend cuts sit at their ceilings", func() {
				So(cuts.DeltaEta, ShouldEqual, 0.077)
				So(cuts.DeltaPhi, ShouldEqual, 0.056)
				So(cuts.DeltaPhiBend, ShouldEqual, 0.0096)
			})
		})

		Convey("When resolving loose cuts at high momentum", func() {
			cuts := me0.AngleEtaCutsFor(types.TierLoose, 1000)

			Convey("Then phi and bend cuts floor at their p=100 values", func() {
				So(cuts.DeltaPhi, ShouldAlmostEqual, 1.2/100)
				So(cuts.DeltaPhiBend, ShouldAlmostEqual, 0.2/100)
			})
		})

		Convey("When resolving loose cuts between floor and ceiling", func() {
			cuts := me0.AngleEtaCutsFor(types.TierLoose, 50)

			Convey("Then the cuts scale as k/p", func() {
				So(cuts.DeltaPhi, ShouldAlmostEqual, 1.2/50)
				So(cuts.DeltaPhiBend, ShouldAlmostEqual, 0.2/50)
			})
		})

		Convey("When resolving medium cuts", func() {
			medium := me0.AngleEtaCutsFor(types.TierMedium, 50)
			loose := me0.AngleEtaCutsFor(types.TierLoose, 50)

			Convey("Then they equal the loose spatial cuts", func() {
				So(medium, ShouldResemble, loose)
			})
		})

		Convey("When resolving tight cuts", func() {
			cuts := me0.AngleEtaCutsFor(types.TierTight, 10)

			Convey("Then the tighter table applies", func() {
				So(cuts.DeltaEta, ShouldEqual, 0.048)
				So(cuts.DeltaPhi, ShouldEqual, 0.032)
				So(cuts.DeltaPhiBend, ShouldEqual, 0.0041)
			})
		})
	})
}

func TestPullDistanceCutsFor(t *testing.T) {
	Convey("Given the pull/distance cut tables", t, func() {
		Convey("When resolving each tier", func() {
			loose := me0.PullDistanceCutsFor(types.TierLoose)
			medium := me0.PullDistanceCutsFor(types.TierMedium)
			tight := me0.PullDistanceCutsFor(types.TierTight)

			Convey("Then only the direction cut varies", func() {
				So(loose.DeltaPhi, ShouldEqual, 0.5)
				So(medium.DeltaPhi, ShouldEqual, 0.3)
				So(tight.DeltaPhi, ShouldEqual, 0.1)

				for _, c := range []me0.PullDistanceCuts{loose, medium, tight} {
					So(c.PullX, ShouldEqual, 3.0)
					So(c.DistX, ShouldEqual, 4.0)
					So(c.PullY, ShouldEqual, 3.0)
					So(c.DistY, ShouldEqual, 4.0)
				}
			})
		})
	})
}
