// Package classify applies the tiered cut-based identification to muons,
// electrons and jets. Standard-detector muon and jet quality predicates come
// from the upstream reconstruction and are consumed, not reimplemented; the
// forward-region ME0 criteria and the electron cut tables live here.
package classify

import (
	"math"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/me0"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/types"
)

// Forward-muon requirement constants.
const (
	// forwardEtaMin is where the standard detectors end and the ME0
	// criteria take over.
	forwardEtaMin = 2.4

	maxForwardDXY = 0.2 // cm, medium and tight
	maxForwardDZ  = 0.5 // cm, tight only
)

// StandardMuonID supplies the standard-detector loose/medium/tight
// predicates. The default implementation reads the selector flags computed
// upstream; tests may substitute their own.
type StandardMuonID interface {
	IsLoose(mu *event.Muon) bool
	IsMedium(mu *event.Muon) bool
	// IsTight must evaluate false when pv is nil: the tight working point
	// is defined relative to a primary vertex.
	IsTight(mu *event.Muon, pv *event.Vertex) bool
}

// FlagMuonID reads the precomputed selector flags carried on the candidate.
type FlagMuonID struct{}

func (FlagMuonID) IsLoose(mu *event.Muon) bool  { return mu.StandardLoose }
func (FlagMuonID) IsMedium(mu *event.Muon) bool { return mu.StandardMedium }
func (FlagMuonID) IsTight(mu *event.Muon, pv *event.Vertex) bool {
	return pv != nil && mu.StandardTight
}

// MuonResult holds one candidate's independent tier decisions and its
// relative isolation.
type MuonResult struct {
	Loose  bool
	Medium bool
	Tight  bool
	RelIso float64
}

// IDBits packs the tier decisions into the record bitmask.
func (r MuonResult) IDBits() int { return types.IDBits(r.Loose, r.Medium, r.Tight) }

// MuonClassifier combines the standard-detector predicates with the
// tier-specific forward ME0 criteria.
type MuonClassifier struct {
	std      StandardMuonID
	strategy me0.Strategy
}

// MuonOption applies a configuration option to the MuonClassifier.
type MuonOption func(*MuonClassifier)

// WithStandardID overrides the standard-detector predicate source.
func WithStandardID(std StandardMuonID) MuonOption {
	return func(c *MuonClassifier) {
		if std != nil {
			c.std = std
		}
	}
}

// NewMuonClassifier builds a classifier over the given ME0 strategy.
func NewMuonClassifier(strategy me0.Strategy, opts ...MuonOption) *MuonClassifier {
	c := &MuonClassifier{
		std:      FlagMuonID{},
		strategy: strategy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify evaluates all three tiers independently for one muon. pv may be
// nil when the event has no valid primary vertex; every vertex-dependent
// requirement then evaluates false rather than failing.
func (c *MuonClassifier) Classify(mu *event.Muon, pv *event.Vertex) MuonResult {
	stdLoose := c.std.IsLoose(mu)
	stdMedium := c.std.IsMedium(mu)
	stdTight := c.std.IsTight(mu, pv)

	forward := math.Abs(mu.Eta) > forwardEtaMin

	var fwdLoose, fwdMedium, fwdTight bool
	if forward {
		ipXY := pv != nil && mu.HasInnerTrack && math.Abs(mu.DXY(pv)) < maxForwardDXY
		ipZ := pv != nil && mu.HasInnerTrack && math.Abs(mu.DZ(pv)) < maxForwardDZ
		pixelHit := mu.HasInnerTrack && mu.ValidPixelHits > 0
		highPurity := mu.HasInnerTrack && mu.HighPurity

		fwdLoose = c.strategy.Matches(mu, types.TierLoose)
		fwdMedium = c.strategy.Matches(mu, types.TierMedium) && ipXY && pixelHit && highPurity
		fwdTight = c.strategy.Matches(mu, types.TierTight) && ipXY && ipZ && pixelHit && highPurity
	}

	return MuonResult{
		Loose:  stdLoose || fwdLoose,
		Medium: stdMedium || fwdMedium,
		Tight:  stdTight || fwdTight,
		RelIso: mu.RelIso(),
	}
}
