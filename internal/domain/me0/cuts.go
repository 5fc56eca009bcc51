package me0

import (
	"math"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
)

// Angle/eta cut constants. The phi and bend cuts loosen at low momentum as
// k/p, floored at their p=100 value and capped at a tier ceiling.
const (
	looseDeltaEtaCut = 0.077
	tightDeltaEtaCut = 0.048

	phiCutScale      = 1.2
	loosePhiCeiling  = 0.056
	tightPhiCeiling  = 0.032

	bendCutScale     = 0.2
	looseBendCeiling = 0.0096
	tightBendCeiling = 0.0041

	// floorMomentum fixes the cut floor: clamp(k/p, k/floorMomentum, ceil).
	floorMomentum = 100.0
)

// Pull/distance cut constants. Residual and pull cuts are tier-independent;
// only the direction cut tightens per tier.
const (
	pullXCut = 3.0
	distXCut = 4.0
	pullYCut = 3.0
	distYCut = 4.0

	looseDirPhiCut  = 0.5
	mediumDirPhiCut = 0.3
	tightDirPhiCut  = 0.1
)

// AngleEtaCuts is one tier's momentum-resolved cut set for the angle/eta
// strategy. Values are computed once per candidate and never mutated.
type AngleEtaCuts struct {
	DeltaEta     float64
	DeltaPhi     float64
	DeltaPhiBend float64
}

// AngleEtaCutsFor resolves the cut set for a tier at momentum p. Medium
// shares the loose spatial cuts; the medium tier tightens through track
// requirements instead.
func AngleEtaCutsFor(tier types.Tier, p float64) AngleEtaCuts {
	if tier == types.TierTight {
		return AngleEtaCuts{
			DeltaEta:     tightDeltaEtaCut,
			DeltaPhi:     clampCut(phiCutScale, p, tightPhiCeiling),
			DeltaPhiBend: clampCut(bendCutScale, p, tightBendCeiling),
		}
	}
	return AngleEtaCuts{
		DeltaEta:     looseDeltaEtaCut,
		DeltaPhi:     clampCut(phiCutScale, p, loosePhiCeiling),
		DeltaPhiBend: clampCut(bendCutScale, p, looseBendCeiling),
	}
}

// PullDistanceCuts is one tier's cut set for the legacy pull/distance
// strategy.
type PullDistanceCuts struct {
	PullX    float64
	DistX    float64
	PullY    float64
	DistY    float64
	DeltaPhi float64
}

// PullDistanceCutsFor resolves the legacy cut set for a tier.
func PullDistanceCutsFor(tier types.Tier) PullDistanceCuts {
	c := PullDistanceCuts{
		PullX: pullXCut,
		DistX: distXCut,
		PullY: pullYCut,
		DistY: distYCut,
	}
	switch tier {
	case types.TierTight:
		c.DeltaPhi = tightDirPhiCut
	case types.TierMedium:
		c.DeltaPhi = mediumDirPhiCut
	default:
		c.DeltaPhi = looseDirPhiCut
	}
	return c
}

// clampCut computes clamp(scale/p, scale/floorMomentum, ceiling): looser at
// low momentum, monotonically non-increasing in p, bounded on both sides.
func clampCut(scale, p, ceiling float64) float64 {
	return math.Min(math.Max(scale/p, scale/floorMomentum), ceiling)
}
