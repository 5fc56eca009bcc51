package classify

import (
	"math"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
)

// Barrel-endcap transition gap in supercluster |eta|; candidates inside it
// fail every tier.
const (
	gapEtaLow  = 1.479
	gapEtaHigh = 1.556
)

// Ooemoop sentinel values for degenerate ECAL energies.
const (
	ooemoopZeroEnergy     = 0.0
	ooemoopNonFiniteValue = 998.0
)

// Conversion veto quality requirements.
const (
	convMinVtxProb = 1e-6
	convMinLxy     = 2.0 // cm, transverse displacement from the beamspot
)

// electronCuts is one tier's threshold set. Every variable must stay below
// its threshold; tiers are evaluated independently, each from its own table.
type electronCuts struct {
	sigmaIetaIeta float64
	deltaEta      float64
	deltaPhi      float64
	hOverE        float64
	chIsoOverPt   float64
	ooemoop       float64
}

// Tier threshold tables. The hadronic-to-EM ratio is the one variable where
// medium is numerically looser than loose; all others tighten monotonically.
var electronCutTable = map[types.Tier]electronCuts{
	types.TierLoose: {
		sigmaIetaIeta: 0.02992,
		deltaEta:      0.004119,
		deltaPhi:      0.05176,
		hOverE:        6.741,
		chIsoOverPt:   2.5,
		ooemoop:       73.76,
	},
	types.TierMedium: {
		sigmaIetaIeta: 0.01609,
		deltaEta:      0.001766,
		deltaPhi:      0.03130,
		hOverE:        7.371,
		chIsoOverPt:   1.325,
		ooemoop:       22.6,
	},
	types.TierTight: {
		sigmaIetaIeta: 0.01614,
		deltaEta:      0.001322,
		deltaPhi:      0.06129,
		hOverE:        4.492,
		chIsoOverPt:   1.255,
		ooemoop:       18.26,
	},
}

// Ooemoop is the energy-momentum consistency variable |1/E - (E/p)/E| with
// sentinel substitution for degenerate ECAL energies: 0 when the energy is
// exactly zero and 998 when it is not finite.
func Ooemoop(ecalEnergy, eSCOverP float64) float64 {
	switch {
	case ecalEnergy == 0:
		return ooemoopZeroEnergy
	case math.IsNaN(ecalEnergy) || math.IsInf(ecalEnergy, 0):
		return ooemoopNonFiniteValue
	default:
		return math.Abs(1/ecalEnergy - eSCOverP/ecalEnergy)
	}
}

// ElectronResult holds one candidate's independent tier decisions and its
// relative isolation.
type ElectronResult struct {
	Loose  bool
	Medium bool
	Tight  bool
	RelIso float64
}

// IDBits packs the tier decisions into the record bitmask.
func (r ElectronResult) IDBits() int { return types.IDBits(r.Loose, r.Medium, r.Tight) }

// ElectronClassifier applies the sequential cut-based veto per tier plus the
// photon-conversion veto.
type ElectronClassifier struct{}

// NewElectronClassifier builds an electron classifier.
func NewElectronClassifier() *ElectronClassifier { return &ElectronClassifier{} }

// Classify evaluates all three tiers for one electron against the event's
// conversion collection and beamspot.
func (c *ElectronClassifier) Classify(el *event.Electron, conversions []event.Conversion, bs event.Beamspot) ElectronResult {
	return ElectronResult{
		Loose:  c.Passes(el, types.TierLoose, conversions, bs),
		Medium: c.Passes(el, types.TierMedium, conversions, bs),
		Tight:  c.Passes(el, types.TierTight, conversions, bs),
		RelIso: el.RelIso(),
	}
}

// Passes runs one tier's sequential veto. Unknown tiers never pass.
func (c *ElectronClassifier) Passes(el *event.Electron, tier types.Tier, conversions []event.Conversion, bs event.Beamspot) bool {
	cuts, ok := electronCutTable[tier]
	if !ok {
		return false
	}

	scEta := math.Abs(el.SuperClusterEta)
	if scEta > gapEtaLow && scEta < gapEtaHigh {
		return false
	}
	if el.SigmaIetaIeta > cuts.sigmaIetaIeta {
		return false
	}
	if math.Abs(el.DeltaEtaSCTrack) > cuts.deltaEta {
		return false
	}
	if math.Abs(el.DeltaPhiSCTrack) > cuts.deltaPhi {
		return false
	}
	if el.HcalOverEcal > cuts.hOverE {
		return false
	}
	if el.SumChargedHadronPt/el.Pt > cuts.chIsoOverPt {
		return false
	}
	if Ooemoop(el.EcalEnergy, el.ESCOverP) > cuts.ooemoop {
		return false
	}
	if hasMatchedConversion(el, conversions, bs) {
		return false
	}
	return true
}

// hasMatchedConversion reports whether the electron's track belongs to a
// good reconstructed photon conversion: a conversion sharing the GSF track,
// with an acceptable vertex fit, no hits upstream of the vertex, and a
// transverse displacement from the beamspot beyond convMinLxy.
func hasMatchedConversion(el *event.Electron, conversions []event.Conversion, bs event.Beamspot) bool {
	if el.GsfTrackID < 0 {
		return false
	}
	for i := range conversions {
		conv := &conversions[i]
		if !containsTrack(conv.TrackIDs, el.GsfTrackID) {
			continue
		}
		if conv.VtxProb <= convMinVtxProb {
			continue
		}
		if conv.HitsBeforeVtx > 0 {
			continue
		}
		if math.Hypot(conv.VtxX-bs.X, conv.VtxY-bs.Y) < convMinLxy {
			continue
		}
		return true
	}
	return false
}

func containsTrack(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
