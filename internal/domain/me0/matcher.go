// Package me0 decides whether a forward muon's track is spatially compatible
// with an ME0 chamber segment. Two strategies exist behind one interface: the
// canonical angle/eta comparison in global coordinates, and the legacy
// local-frame pull/distance comparison. Callers pick the strategy explicitly;
// the cut sets are immutable per tier.
package me0

import (
	"math"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/geometry"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/match"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/metrics"
)

// Variant names a matching strategy in configuration.
type Variant string

const (
	VariantAngleEta     Variant = "angle_eta"
	VariantPullDistance Variant = "pull_distance"
)

// Strategy classifies a muon's chamber/segment matches against one tier's
// cuts. Implementations are stateless beyond the read-only geometry snapshot
// and safe for concurrent use.
type Strategy interface {
	// Matches reports whether any ME0 (chamber, segment) pair of the muon
	// passes the tier's cuts. Muons not flagged as ME0 tracks never match.
	Matches(mu *event.Muon, tier types.Tier) bool

	// Variant identifies the strategy.
	Variant() Variant
}

// NewStrategy builds the strategy named by variant. The angle/eta strategy
// needs a geometry snapshot; passing a nil snapshot, or an unknown variant,
// returns an error.
func NewStrategy(variant Variant, geo *geometry.Snapshot) (Strategy, error) {
	switch variant {
	case VariantAngleEta:
		if geo == nil {
			return nil, ErrNoGeometry
		}
		return &AngleEtaStrategy{geo: geo}, nil
	case VariantPullDistance:
		return &PullDistanceStrategy{}, nil
	default:
		return nil, ErrUnknownVariant
	}
}

// AngleEtaStrategy compares track and segment in global eta/phi plus the
// chamber-level bend angle. This is the canonical strategy for all tiers.
type AngleEtaStrategy struct {
	geo *geometry.Snapshot
}

// NewAngleEtaStrategy wires the strategy to a run-scoped geometry snapshot.
func NewAngleEtaStrategy(geo *geometry.Snapshot) *AngleEtaStrategy {
	return &AngleEtaStrategy{geo: geo}
}

// Variant identifies the strategy.
func (s *AngleEtaStrategy) Variant() Variant { return VariantAngleEta }

// Matches reports whether any ME0 (chamber, segment) pair passes the tier's
// angle/eta cuts at the muon's momentum. Chambers missing from the geometry
// snapshot count as non-matching and the scan continues.
func (s *AngleEtaStrategy) Matches(mu *event.Muon, tier types.Tier) bool {
	if !mu.IsME0Muon {
		return false
	}
	cuts := AngleEtaCutsFor(tier, mu.P())

	for i := range mu.Chambers {
		cm := &mu.Chambers[i]
		if cm.Detector != event.DetectorME0 {
			continue
		}
		chamber, err := s.geo.Chamber(cm.ChamberID)
		if err != nil {
			metrics.RecordGeometryMiss()
			continue
		}

		trkPos := geometry.LocalPoint{X: cm.X, Y: cm.Y}
		trkDir := geometry.LocalVector{X: cm.DXDZ, Y: cm.DYDZ, Z: 1}
		trkGlobal := chamber.ToGlobal(trkPos)
		trackBend := chamber.ComputeDeltaPhi(trkPos, trkDir)

		for j := range cm.Segments {
			seg := &cm.Segments[j]
			segGlobal := chamber.ToGlobal(geometry.LocalPoint{X: seg.X, Y: seg.Y})

			deltaEta := math.Abs(trkGlobal.Eta() - segGlobal.Eta())
			deltaPhi := math.Abs(match.DeltaPhi(trkGlobal.Phi(), segGlobal.Phi()))

			// The segment-level bend is approximated from the
			// local direction slopes; a dedicated segment deltaPhi
			// is pending upstream.
			segBend := math.Abs(math.Atan(cm.DXDZ) - math.Atan(seg.DXDZ))
			deltaPhiBend := math.Abs(segBend - trackBend)

			if deltaEta < cuts.DeltaEta && deltaPhi < cuts.DeltaPhi && deltaPhiBend < cuts.DeltaPhiBend {
				return true
			}
		}
	}
	return false
}

// PullDistanceStrategy compares raw local-frame residuals and their pulls,
// with the direction delta taken straight from the stored slopes. It needs
// no geometry.
//
// The scan preserves the historical behaviour exactly: residuals are
// overwritten per (chamber, segment) pair, so the decision is taken on the
// LAST ME0 pair in collection order, not on the best one.
type PullDistanceStrategy struct{}

// Variant identifies the strategy.
func (s *PullDistanceStrategy) Variant() Variant { return VariantPullDistance }

// Matches applies the tier's pull/distance cuts to the last ME0 pair.
// Non-positive uncertainty sums make the pulls NaN or Inf, which fail the
// cuts instead of panicking.
func (s *PullDistanceStrategy) Matches(mu *event.Muon, tier types.Tier) bool {
	if !mu.IsME0Muon {
		return false
	}
	cuts := PullDistanceCutsFor(tier)

	deltaX, deltaY := 999.0, 999.0
	pullX, pullY := 999.0, 999.0
	deltaPhi := 999.0

	for i := range mu.Chambers {
		cm := &mu.Chambers[i]
		if cm.Detector != event.DetectorME0 {
			continue
		}
		for j := range cm.Segments {
			seg := &cm.Segments[j]
			deltaX = math.Abs(cm.X - seg.X)
			deltaY = math.Abs(cm.Y - seg.Y)
			pullX = deltaX / math.Sqrt(cm.XErr+seg.XErr)
			pullY = deltaY / math.Sqrt(cm.YErr+seg.YErr)
			deltaPhi = math.Abs(math.Atan(cm.DXDZ) - math.Atan(seg.DXDZ))
		}
	}

	xMatch := pullX < cuts.PullX || deltaX < cuts.DistX
	yMatch := pullY < cuts.PullY || deltaY < cuts.DistY
	dirMatch := deltaPhi < cuts.DeltaPhi
	return xMatch && yMatch && dirMatch
}
