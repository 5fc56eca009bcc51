package assemble_test

import (
	"context"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/assemble"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/classify"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/me0"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// neverStrategy fails every forward spatial match; central muons rely on
// their selector flags only.
type neverStrategy struct{}

func (neverStrategy) Matches(*event.Muon, types.Tier) bool { return false }
func (neverStrategy) Variant() me0.Variant                 { return "never" }

func newAssembler(opts ...assemble.Option) *assemble.Assembler {
	return assemble.New(
		classify.NewMuonClassifier(neverStrategy{}),
		classify.NewElectronClassifier(),
		classify.NewJetClassifier(),
		opts...,
	)
}

func validVertex() event.Vertex {
	return event.Vertex{NDOF: 10}
}

func flaggedMuon(pt, eta, phi float64) event.Muon {
	return event.Muon{
		Kinematics:     event.Kinematics{Pt: pt, Eta: eta, Phi: phi},
		Charge:         -1,
		StandardLoose:  true,
		StandardMedium: true,
		StandardTight:  true,
	}
}

func TestPrimaryVertexIndex(t *testing.T) {
	Convey("Given vertex collections", t, func() {
		Convey("When the first vertex is fake", func() {
			idx := assemble.PrimaryVertexIndex([]event.Vertex{
				{IsFake: true, NDOF: 10},
				{NDOF: 10},
			})

			Convey("Then the first valid one is selected", func() {
				So(idx, ShouldEqual, 1)
			})
		})

		Convey("When a vertex lacks degrees of freedom", func() {
			idx := assemble.PrimaryVertexIndex([]event.Vertex{
				{NDOF: 4},
				{NDOF: 4.5},
			})

			So(idx, ShouldEqual, 1)
		})

		Convey("When no vertex qualifies", func() {
			idx := assemble.PrimaryVertexIndex([]event.Vertex{
				{IsFake: true, NDOF: 10},
				{NDOF: 2},
			})

			So(idx, ShouldEqual, assemble.NoVertex)
		})

		Convey("When the collection is empty", func() {
			So(assemble.PrimaryVertexIndex(nil), ShouldEqual, assemble.NoVertex)
		})
	})
}

func TestAssembleEmptyEvent(t *testing.T) {
	Convey("Given an event with no collections at all", t, func() {
		a := newAssembler()
		rec, err := a.Assemble(context.Background(), &event.Event{Run: 1, Lumi: 2, Number: 3})

		Convey("Then an empty record with the event coordinates comes back", func() {
			So(err, ShouldBeNil)
			So(rec.Run, ShouldEqual, 1)
			So(rec.Lumi, ShouldEqual, 2)
			So(rec.Number, ShouldEqual, 3)
			So(rec.PrimaryVertex, ShouldEqual, assemble.NoVertex)
			So(rec.Leptons, ShouldBeEmpty)
			So(rec.Jets, ShouldBeEmpty)
			So(rec.GenLeptons, ShouldBeEmpty)
			So(rec.GenJets, ShouldBeEmpty)
			So(rec.MET, ShouldBeEmpty)
			So(rec.PFLeptons, ShouldBeEmpty)
		})
	})
}

func TestAssembleNoVertex(t *testing.T) {
	Convey("Given an event without a valid primary vertex", t, func() {
		a := newAssembler()
		ev := &event.Event{
			Vertices: []event.Vertex{{IsFake: true, NDOF: 10}},
			Muons:    []event.Muon{flaggedMuon(30, 1.0, 0.5)},
			METs:     []event.MET{{Pt: 50, Phi: 1.0}},
			GenParticles: []event.GenParticle{
				{Kinematics: event.Kinematics{Pt: 25, Eta: 1.0, Phi: 0.5}, PID: -13},
			},
		}
		rec, err := a.Assemble(context.Background(), ev)

		Convey("Then generator content survives and reconstructed content is skipped", func() {
			So(err, ShouldBeNil)
			So(rec.PrimaryVertex, ShouldEqual, assemble.NoVertex)
			So(rec.GenLeptons, ShouldHaveLength, 1)
			So(rec.Leptons, ShouldBeEmpty)
			So(rec.MET, ShouldBeEmpty)
		})
	})
}

func TestAssembleLeptons(t *testing.T) {
	Convey("Given an event with a valid vertex and leptons", t, func() {
		a := newAssembler()
		ev := &event.Event{
			Vertices: []event.Vertex{validVertex()},
			Muons: []event.Muon{
				flaggedMuon(30, 1.0, 0.5),
				flaggedMuon(5, 1.0, 1.5), // below the pt gate
			},
			GenParticles: []event.GenParticle{
				{Kinematics: event.Kinematics{Pt: 29, Eta: 1.05, Phi: 0.5}, PID: -13},
				{Kinematics: event.Kinematics{Pt: 31, Eta: 1.0, Phi: 0.55}, PID: -13},
			},
		}
		rec, err := a.Assemble(context.Background(), ev)
		So(err, ShouldBeNil)

		Convey("Then only the muon above the gate is kept", func() {
			So(rec.Leptons, ShouldHaveLength, 1)
			So(rec.Leptons[0].PID, ShouldEqual, -13)
			So(rec.Leptons[0].ID, ShouldEqual, 0b111)
		})

		Convey("Then the generator back-reference keeps the last in-cone entry", func() {
			So(rec.GenLeptons, ShouldHaveLength, 2)
			So(rec.Leptons[0].Gen, ShouldEqual, 1)
		})
	})
}

func TestAssembleGenJetLeptonExclusion(t *testing.T) {
	Convey("Given a gen jet that is really a gen lepton", t, func() {
		a := newAssembler()
		ev := &event.Event{
			GenParticles: []event.GenParticle{
				{Kinematics: event.Kinematics{Pt: 50, Eta: 1.0, Phi: 1.0}, PID: 11},
			},
			GenJets: []event.GenJet{
				{Kinematics: event.Kinematics{Pt: 50.2, Eta: 1.0, Phi: 1.004}},
				{Kinematics: event.Kinematics{Pt: 60, Eta: -1.0, Phi: -2.0}},
			},
		}
		rec, err := a.Assemble(context.Background(), ev)
		So(err, ShouldBeNil)

		Convey("Then the overlapping gen jet is excluded", func() {
			So(rec.GenJets, ShouldHaveLength, 1)
			So(rec.GenJets[0].Pt, ShouldEqual, 60)
		})
	})
}

func TestAssembleGenIsolation(t *testing.T) {
	Convey("Given a gen lepton near a surviving gen jet", t, func() {
		a := newAssembler()
		ev := &event.Event{
			GenParticles: []event.GenParticle{
				{Kinematics: event.Kinematics{Pt: 40, Eta: 1.0, Phi: 1.0}, PID: 13},
			},
			GenJets: []event.GenJet{{
				Kinematics: event.Kinematics{Pt: 60, Eta: 1.2, Phi: 1.0},
				Constituents: []event.Kinematics{
					{Pt: 8, Eta: 1.1, Phi: 1.0},  // inside the muon cone
					{Pt: 40, Eta: 1.0, Phi: 1.0}, // the lepton itself
					{Pt: 12, Eta: 1.6, Phi: 1.0}, // outside the cone
				},
			}},
		}
		rec, err := a.Assemble(context.Background(), ev)
		So(err, ShouldBeNil)

		Convey("Then only in-cone strangers feed the isolation", func() {
			So(rec.GenLeptons, ShouldHaveLength, 1)
			So(rec.GenLeptons[0].RelIso, ShouldAlmostEqual, 8.0/40.0)
		})
	})
}

func TestAssembleJets(t *testing.T) {
	Convey("Given jets around a hard muon", t, func() {
		a := newAssembler()
		mu := flaggedMuon(100, 1.0, 1.0)
		ev := &event.Event{
			Vertices: []event.Vertex{validVertex()},
			Muons:    []event.Muon{mu},
			Jets: []event.Jet{
				// The muon mis-reconstructed as a jet.
				{Kinematics: event.Kinematics{Pt: 100.4, Eta: 1.0, Phi: 1.005}, LooseID: true},
				// A genuine jet close to the muon.
				{Kinematics: event.Kinematics{Pt: 100, Eta: 1.0, Phi: 1.02}, TightID: true, LooseID: true},
				// Below the pt gate.
				{Kinematics: event.Kinematics{Pt: 15, Eta: 0.5, Phi: -1.0}, LooseID: true},
			},
			GenJets: []event.GenJet{
				{Kinematics: event.Kinematics{Pt: 95, Eta: 1.0, Phi: 1.1}},
				{Kinematics: event.Kinematics{Pt: 98, Eta: 1.05, Phi: 1.0}},
			},
		}
		rec, err := a.Assemble(context.Background(), ev)
		So(err, ShouldBeNil)

		Convey("Then the duplicate and the soft jet are dropped", func() {
			So(rec.Jets, ShouldHaveLength, 1)
			So(rec.Jets[0].ID, ShouldEqual, 0b11)
		})

		Convey("Then the generator back-reference keeps the first in-cone entry", func() {
			So(rec.Jets[0].Gen, ShouldEqual, 0)
		})
	})
}

func TestAssembleMETAndPF(t *testing.T) {
	Convey("Given MET entries and a PF pool", t, func() {
		a := newAssembler()
		ev := &event.Event{
			Vertices: []event.Vertex{validVertex()},
			METs:     []event.MET{{Pt: 55, Phi: 0.3}, {Pt: 10, Phi: 2.0}},
			PFCandidates: []event.PFCandidate{
				{Kinematics: event.Kinematics{Pt: 25, Eta: 0.5, Phi: 1.0}, PID: -13, HighPurity: true},
				{Kinematics: event.Kinematics{Pt: 10, Eta: 0.6, Phi: 1.1}, PID: 211},
				{Kinematics: event.Kinematics{Pt: 30, Eta: 2.0, Phi: -1.0}, PID: 211},
				{Kinematics: event.Kinematics{Pt: 5, Eta: 0.55, Phi: 1.05}, PID: 11},
			},
		}
		rec, err := a.Assemble(context.Background(), ev)
		So(err, ShouldBeNil)

		Convey("Then only the first MET entry is recorded", func() {
			So(rec.MET, ShouldHaveLength, 1)
			So(rec.MET[0].Pt, ShouldEqual, 55)
		})

		Convey("Then PF leptons pass the gates with pool isolation", func() {
			// The 5 GeV electron fails the lepton gate; the muon's
			// cone holds the 10 GeV pion and the soft electron.
			So(rec.PFLeptons, ShouldHaveLength, 1)
			So(rec.PFLeptons[0].PID, ShouldEqual, -13)
			So(rec.PFLeptons[0].RelIso, ShouldAlmostEqual, 15.0/25.0)
			So(rec.PFLeptons[0].HighPurity, ShouldBeTrue)
		})
	})
}

func TestSelectMuonTiers(t *testing.T) {
	Convey("Given a mix of muons and a valid vertex", t, func() {
		a := newAssembler()
		tight := flaggedMuon(30, 1.0, 0.5)
		mediumOnly := flaggedMuon(20, -1.0, 1.5)
		mediumOnly.StandardTight = false
		looseOnly := flaggedMuon(10, 0.3, -2.0)
		looseOnly.StandardMedium = false
		looseOnly.StandardTight = false
		soft := flaggedMuon(1, 0.1, 0.1)

		ev := &event.Event{
			Vertices: []event.Vertex{validVertex()},
			Muons:    []event.Muon{tight, mediumOnly, looseOnly, soft},
		}
		tiers := a.SelectMuonTiers(context.Background(), ev)

		Convey("Then each tier holds its satisfying muons", func() {
			So(tiers.Loose, ShouldHaveLength, 3)
			So(tiers.Medium, ShouldHaveLength, 2)
			So(tiers.Tight, ShouldHaveLength, 1)
		})

		Convey("Then every tier slice is aligned with its isolation slice", func() {
			So(tiers.LooseIso, ShouldHaveLength, len(tiers.Loose))
			So(tiers.MediumIso, ShouldHaveLength, len(tiers.Medium))
			So(tiers.TightIso, ShouldHaveLength, len(tiers.Tight))
		})
	})

	Convey("Given no valid vertex", t, func() {
		a := newAssembler()
		ev := &event.Event{
			Muons: []event.Muon{flaggedMuon(30, 1.0, 0.5)},
		}
		tiers := a.SelectMuonTiers(context.Background(), ev)

		Convey("Then the tight tier is empty and the others survive", func() {
			So(tiers.Loose, ShouldHaveLength, 1)
			So(tiers.Medium, ShouldHaveLength, 1)
			So(tiers.Tight, ShouldBeEmpty)
		})
	})
}

func TestWithAcceptance(t *testing.T) {
	Convey("Given widened kinematic gates", t, func() {
		acc := assemble.DefaultAcceptance()
		acc.LeptonMinPt = 3
		a := newAssembler(assemble.WithAcceptance(acc))

		ev := &event.Event{
			Vertices: []event.Vertex{validVertex()},
			Muons:    []event.Muon{flaggedMuon(5, 1.0, 1.5)},
		}
		rec, err := a.Assemble(context.Background(), ev)
		So(err, ShouldBeNil)

		Convey("Then a 5 GeV muon now passes", func() {
			So(rec.Leptons, ShouldHaveLength, 1)
		})
	})
}
