// Package match implements the generic angular matching used across the
// selection: nearest-neighbour association, overlap detection between
// candidate collections, and cone-based isolation sums.
package match

import (
	"math"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
)

// Angular-matching constants shared by all call sites.
const (
	// SelfMatchDR is the separation below which two objects are treated
	// as the same physical object.
	SelfMatchDR = 0.01

	// OverlapPtFraction is the relative pt agreement required, together
	// with SelfMatchDR, to call two objects duplicates.
	OverlapPtFraction = 0.01

	// GenMatchDR is the cone used to associate reconstructed objects to
	// generator-level truth.
	GenMatchDR = 0.4

	// MuonIsoCone and ElectronIsoCone are the isolation cone radii by
	// lepton type.
	MuonIsoCone     = 0.4
	ElectronIsoCone = 0.3

	// Unmatched is returned when no pool entry satisfies a search.
	Unmatched = -1
)

// TieBreak selects which of several in-cone pool entries wins a search.
// The lepton-to-generator association historically keeps the last entry in
// pool order while the jet-to-generator association keeps the first; both
// behaviours stay available so either call site can state its policy.
type TieBreak int

const (
	// FirstWithinRadius stops at the first pool entry inside the cone.
	FirstWithinRadius TieBreak = iota
	// LastWithinRadius scans the whole pool and keeps the last entry
	// inside the cone.
	LastWithinRadius
)

// Object is anything carrying four-momentum kinematics. event.Kinematics
// satisfies it by embedding.
type Object interface {
	Kin() event.Kinematics
}

// DeltaPhi returns the wrapped azimuthal difference in (-pi, pi].
func DeltaPhi(a, b float64) float64 {
	d := a - b
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// DeltaR returns the angular separation sqrt(dEta^2 + dPhi^2).
func DeltaR(etaA, phiA, etaB, phiB float64) float64 {
	dEta := etaA - etaB
	dPhi := DeltaPhi(phiA, phiB)
	return math.Sqrt(dEta*dEta + dPhi*dPhi)
}

// Separation is DeltaR between two objects.
func Separation(a, b Object) float64 {
	ka, kb := a.Kin(), b.Kin()
	return DeltaR(ka.Eta, ka.Phi, kb.Eta, kb.Phi)
}

// Nearest returns the index of the pool entry within maxDR of seed that wins
// under the given tie-break, or Unmatched. Entries rejected by accept are
// skipped; a nil accept admits everything. Despite the name this is a
// within-radius search, not a closest-first one; the tie-break decides among
// multiple hits.
func Nearest[T Object](seed Object, pool []T, maxDR float64, tie TieBreak, accept func(T) bool) int {
	k := seed.Kin()
	found := Unmatched
	for i := range pool {
		if accept != nil && !accept(pool[i]) {
			continue
		}
		pk := pool[i].Kin()
		if DeltaR(k.Eta, k.Phi, pk.Eta, pk.Phi) > maxDR {
			continue
		}
		found = i
		if tie == FirstWithinRadius {
			break
		}
	}
	return found
}

// IsSameObject reports whether cand duplicates ref: their pt agree to within
// OverlapPtFraction of ref's pt and they sit closer than SelfMatchDR.
func IsSameObject(cand, ref Object) bool {
	ck, rk := cand.Kin(), ref.Kin()
	if math.Abs(ck.Pt-rk.Pt) >= OverlapPtFraction*rk.Pt {
		return false
	}
	return DeltaR(ck.Eta, ck.Phi, rk.Eta, rk.Phi) < SelfMatchDR
}

// OverlapsAny reports whether cand duplicates any entry of pool.
func OverlapsAny[T Object](cand Object, pool []T) bool {
	for i := range pool {
		if IsSameObject(cand, pool[i]) {
			return true
		}
	}
	return false
}

// RelativeIsolation sums the pt of pool entries within cone of cand,
// excluding cand itself (any entry closer than SelfMatchDR), and divides by
// cand's pt. An empty pool, or a pool holding only the candidate, yields 0.
func RelativeIsolation[T Object](cand Object, pool []T, cone float64) float64 {
	k := cand.Kin()
	var sum float64
	for i := range pool {
		pk := pool[i].Kin()
		dr := DeltaR(k.Eta, k.Phi, pk.Eta, pk.Phi)
		if dr < SelfMatchDR || dr > cone {
			continue
		}
		sum += pk.Pt
	}
	return sum / k.Pt
}

// IsoCone returns the isolation cone radius for a lepton pdg magnitude.
func IsoCone(absPID int) float64 {
	if absPID == event.PDGElectron {
		return ElectronIsoCone
	}
	return MuonIsoCone
}
