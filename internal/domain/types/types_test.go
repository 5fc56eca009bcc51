package types_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
)

func TestTierString(t *testing.T) {
	Convey("Given the identification tiers", t, func() {
		So(types.TierLoose.String(), ShouldEqual, "loose")
		So(types.TierMedium.String(), ShouldEqual, "medium")
		So(types.TierTight.String(), ShouldEqual, "tight")
		So(types.TierNone.String(), ShouldEqual, "none")
		So(types.Tier(99).String(), ShouldEqual, "none")
	})
}

func TestIDBits(t *testing.T) {
	Convey("Given independent tier decisions", t, func() {
		Convey("When packing lepton bits", func() {
			So(types.IDBits(false, false, false), ShouldEqual, 0b000)
			So(types.IDBits(true, false, false), ShouldEqual, 0b100)
			So(types.IDBits(true, true, false), ShouldEqual, 0b110)
			So(types.IDBits(true, true, true), ShouldEqual, 0b111)

			Convey("And non-monotonic combinations survive as-is", func() {
				So(types.IDBits(false, false, true), ShouldEqual, 0b001)
				So(types.IDBits(true, false, true), ShouldEqual, 0b101)
			})
		})

		Convey("When packing jet bits", func() {
			So(types.JetIDBits(false, false), ShouldEqual, 0b00)
			So(types.JetIDBits(true, false), ShouldEqual, 0b10)
			So(types.JetIDBits(false, true), ShouldEqual, 0b01)
			So(types.JetIDBits(true, true), ShouldEqual, 0b11)
		})
	})
}
