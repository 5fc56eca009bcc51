package simevents

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Kinematic generation ranges, tuned to populate every branch of the
// selection: barrel and forward leptons, sub- and above-threshold pt,
// isolated and busy events.
const (
	muonPtMin    = 3.0
	muonPtRange  = 77.0
	muonEtaSpan  = 2.8
	forwardGap   = 2.4 // |eta| above this goes through the chamber matcher
	elecPtMin    = 8.0
	elecPtRange  = 72.0
	elecEtaSpan  = 2.9
	jetPtMin     = 15.0
	jetPtRange   = 185.0
	jetEtaSpan   = 4.7
	metPtMin     = 5.0
	metPtRange   = 120.0
	pfPtMin      = 0.5
	pfPtRange    = 19.5
	isoSumMax    = 4.0
	genSmeardEta = 0.05 // generator-match smearing half-width
	genSmearFrac = 0.05
)

// Multiplicity ranges per event.
const (
	maxVertices  = 5
	maxMuons     = 3
	maxElectrons = 2
	maxJets      = 6
	maxPFCands   = 25
)

// Chamber-local smearing applied between the propagated track position and
// its matched segment. Small enough that most forward muons pass the loose
// working point, with a tail that fails the tight one.
const (
	segmentPosSmear   = 0.8   // cm
	segmentSlopeSmear = 0.015 // dimensionless slope delta
	positionVariance  = 0.35  // cm^2, per-coordinate error term
)

// Fractions steering discrete choices.
const (
	fakeVertexFraction   = 0.15
	tightMuonFraction    = 0.6
	mediumMuonFraction   = 0.8
	tightJetFraction     = 0.7
	highPurityFraction   = 0.9
	conversionFraction   = 0.1
	genMatchLossFraction = 0.15 // reco objects without a generator partner
)

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomIn returns a random float64 in [min, min+width).
func randomIn(min, width float64) float64 {
	return min + width*randomFloat()
}

// randomCount returns a random int in [1, max].
func randomCount(max int) int {
	return 1 + int(randomFloat()*float64(max))
}

// randomSign returns -1 or +1.
func randomSign() int {
	if randomFloat() < 0.5 {
		return -1
	}
	return 1
}

// GenerateEvent builds one synthetic event for the given run coordinates.
// Events are self-consistent: forward muons carry chamber matches on real
// snapshot chambers, and most reco objects have a generator partner.
func GenerateEvent(run, lumi uint32, number uint64) *event.Event {
	ev := &event.Event{
		Run:    run,
		Lumi:   lumi,
		Number: number,
	}

	genVertices(ev)
	genMuons(ev)
	genElectrons(ev)
	genJets(ev)
	genMET(ev)
	genPFCandidates(ev)

	return ev
}

func genVertices(ev *event.Event) {
	n := randomCount(maxVertices)
	ev.Vertices = make([]event.Vertex, 0, n)
	for i := 0; i < n; i++ {
		ev.Vertices = append(ev.Vertices, event.Vertex{
			X:      randomIn(-0.01, 0.02),
			Y:      randomIn(-0.01, 0.02),
			Z:      randomIn(-10, 20),
			IsFake: randomFloat() < fakeVertexFraction,
			NDOF:   randomIn(2, 40),
		})
	}
	ev.Beamspot = event.Beamspot{
		X: randomIn(-0.005, 0.01),
		Y: randomIn(-0.005, 0.01),
		Z: randomIn(-1, 2),
	}
}

func genMuons(ev *event.Event) {
	n := randomCount(maxMuons)
	ev.Muons = make([]event.Muon, 0, n)
	for i := 0; i < n; i++ {
		kin := event.Kinematics{
			Pt:   randomIn(muonPtMin, muonPtRange),
			Eta:  randomIn(-muonEtaSpan, 2*muonEtaSpan),
			Phi:  randomIn(-math.Pi, 2*math.Pi),
			Mass: 0.106,
		}
		tight := randomFloat() < tightMuonFraction
		medium := tight || randomFloat() < mediumMuonFraction
		mu := event.Muon{
			Kinematics:     kin,
			Charge:         randomSign(),
			StandardLoose:  true,
			StandardMedium: medium,
			StandardTight:  tight,

			HasInnerTrack:  true,
			TrackVX:        randomIn(-0.05, 0.1),
			TrackVY:        randomIn(-0.05, 0.1),
			TrackVZ:        randomIn(-10, 20),
			ValidPixelHits: randomCount(6),
			HighPurity:     randomFloat() < highPurityFraction,

			ChargedHadronIso: randomIn(0, isoSumMax),
			NeutralHadronIso: randomIn(0, isoSumMax),
			PhotonIso:        randomIn(0, isoSumMax),
		}
		if math.Abs(kin.Eta) > forwardGap {
			mu.IsME0Muon = true
			mu.Chambers = []event.ChamberMatch{forwardChamberMatch(kin)}
		}
		ev.Muons = append(ev.Muons, mu)

		if randomFloat() > genMatchLossFraction {
			ev.GenParticles = append(ev.GenParticles, smearedGenLepton(kin, mu.Charge*event.PDGMuon))
		}
	}
}

// forwardChamberMatch places the track crossing on the chamber covering the
// muon's azimuth and drops one smeared segment next to it.
func forwardChamberMatch(kin event.Kinematics) event.ChamberMatch {
	x := randomIn(-15, 30)
	y := randomIn(-20, 40)
	dxdz := randomIn(-0.1, 0.2)
	dydz := randomIn(-0.1, 0.2)
	return event.ChamberMatch{
		Detector:  event.DetectorME0,
		ChamberID: chamberForPhi(kin.Eta, kin.Phi),
		X:         x,
		Y:         y,
		XErr:      positionVariance,
		YErr:      positionVariance,
		DXDZ:      dxdz,
		DYDZ:      dydz,
		Segments: []event.SegmentMatch{{
			X:    x + randomIn(-segmentPosSmear, 2*segmentPosSmear),
			Y:    y + randomIn(-segmentPosSmear, 2*segmentPosSmear),
			XErr: positionVariance,
			YErr: positionVariance,
			DXDZ: dxdz + randomIn(-segmentSlopeSmear, 2*segmentSlopeSmear),
			DYDZ: dydz + randomIn(-segmentSlopeSmear, 2*segmentSlopeSmear),
		}},
	}
}

func genElectrons(ev *event.Event) {
	n := randomCount(maxElectrons)
	ev.Electrons = make([]event.Electron, 0, n)
	for i := 0; i < n; i++ {
		kin := event.Kinematics{
			Pt:   randomIn(elecPtMin, elecPtRange),
			Eta:  randomIn(-elecEtaSpan, 2*elecEtaSpan),
			Phi:  randomIn(-math.Pi, 2*math.Pi),
			Mass: 0.000511,
		}
		energy := kin.P() * randomIn(0.9, 0.2)
		el := event.Electron{
			Kinematics: kin,
			Charge:     randomSign(),

			SuperClusterEta: kin.Eta + randomIn(-0.01, 0.02),
			SigmaIetaIeta:   randomIn(0.005, 0.03),
			DeltaEtaSCTrack: randomIn(-0.004, 0.008),
			DeltaPhiSCTrack: randomIn(-0.06, 0.12),
			HcalOverEcal:    randomIn(0, 6),
			EcalEnergy:      energy,
			ESCOverP:        randomIn(0.8, 0.4),

			SumChargedHadronPt: randomIn(0, 2*isoSumMax),
			GsfTrackID:         i,

			ChargedHadronIso: randomIn(0, isoSumMax),
			NeutralHadronIso: randomIn(0, isoSumMax),
			PhotonIso:        randomIn(0, isoSumMax),
		}
		ev.Electrons = append(ev.Electrons, el)

		if randomFloat() < conversionFraction {
			ev.Conversions = append(ev.Conversions, event.Conversion{
				TrackIDs:      []int{el.GsfTrackID, 1000 + i},
				VtxProb:       randomFloat(),
				VtxX:          randomIn(-5, 10),
				VtxY:          randomIn(-5, 10),
				HitsBeforeVtx: int(randomFloat() * 3),
			})
		}
		if randomFloat() > genMatchLossFraction {
			ev.GenParticles = append(ev.GenParticles, smearedGenLepton(kin, el.Charge*event.PDGElectron))
		}
	}
}

func genJets(ev *event.Event) {
	n := randomCount(maxJets)
	ev.Jets = make([]event.Jet, 0, n)
	ev.GenJets = make([]event.GenJet, 0, n)
	for i := 0; i < n; i++ {
		kin := event.Kinematics{
			Pt:   randomIn(jetPtMin, jetPtRange),
			Eta:  randomIn(-jetEtaSpan, 2*jetEtaSpan),
			Phi:  randomIn(-math.Pi, 2*math.Pi),
			Mass: randomIn(2, 20),
		}
		flavour := jetFlavour()
		ev.Jets = append(ev.Jets, event.Jet{
			Kinematics: kin,
			LooseID:    true,
			TightID:    randomFloat() < tightJetFraction,
			BTags: map[string]float64{
				"pfCombinedInclusiveSecondaryVertexV2BJetTags": randomFloat(),
				"pfDeepCSVJetTags:probb":                       randomFloat() / 2,
				"pfDeepCSVJetTags:probbb":                      randomFloat() / 2,
			},
			PartonFlavour: flavour,
			HadronFlavour: flavour,
			GenPartonPID:  flavour,
		})

		if randomFloat() > genMatchLossFraction {
			gkin := smearKinematics(kin)
			ev.GenJets = append(ev.GenJets, event.GenJet{
				Kinematics:   gkin,
				PID:          flavour,
				Constituents: jetConstituents(gkin),
			})
		}
	}
}

// jetFlavour draws a parton flavour: mostly light quarks and gluons, with a
// heavy-flavour tail.
func jetFlavour() int {
	r := randomFloat()
	switch {
	case r < 0.1:
		return 5
	case r < 0.2:
		return 4
	case r < 0.6:
		return 21
	default:
		return randomCount(3)
	}
}

// jetConstituents splits a generator jet into a handful of collinear
// particles that sum roughly to the jet pt.
func jetConstituents(kin event.Kinematics) []event.Kinematics {
	n := 2 + int(randomFloat()*4)
	parts := make([]event.Kinematics, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, event.Kinematics{
			Pt:  kin.Pt / float64(n) * randomIn(0.7, 0.6),
			Eta: kin.Eta + randomIn(-0.2, 0.4),
			Phi: kin.Phi + randomIn(-0.2, 0.4),
		})
	}
	return parts
}

func genMET(ev *event.Event) {
	ev.METs = []event.MET{{
		Pt:  randomIn(metPtMin, metPtRange),
		Phi: randomIn(-math.Pi, 2*math.Pi),
	}}
}

func genPFCandidates(ev *event.Event) {
	n := randomCount(maxPFCands)
	ev.PFCandidates = make([]event.PFCandidate, 0, n)
	for i := 0; i < n; i++ {
		ev.PFCandidates = append(ev.PFCandidates, event.PFCandidate{
			Kinematics: event.Kinematics{
				Pt:  randomIn(pfPtMin, pfPtRange),
				Eta: randomIn(-5, 10),
				Phi: randomIn(-math.Pi, 2*math.Pi),
			},
			PID:        pfPID(),
			HighPurity: randomFloat() < highPurityFraction,
		})
	}
}

// pfPID draws a particle-flow pdg id: mostly charged hadrons, some photons
// and neutral hadrons, a few leptons.
func pfPID() int {
	r := randomFloat()
	switch {
	case r < 0.6:
		return randomSign() * 211
	case r < 0.8:
		return 22
	case r < 0.9:
		return 130
	case r < 0.95:
		return randomSign() * event.PDGMuon
	default:
		return randomSign() * event.PDGElectron
	}
}

// smearedGenLepton builds a generator particle close enough to the reco
// candidate to survive the matching radius.
func smearedGenLepton(kin event.Kinematics, pid int) event.GenParticle {
	return event.GenParticle{
		Kinematics: smearKinematics(kin),
		PID:        pid,
	}
}

func smearKinematics(kin event.Kinematics) event.Kinematics {
	return event.Kinematics{
		Pt:   kin.Pt * randomIn(1-genSmearFrac, 2*genSmearFrac),
		Eta:  kin.Eta + randomIn(-genSmeardEta, 2*genSmeardEta),
		Phi:  kin.Phi + randomIn(-genSmeardEta, 2*genSmeardEta),
		Mass: kin.Mass,
	}
}
