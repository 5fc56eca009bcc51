// Package event contains the per-event domain models passed between layers:
// the immutable input collections handed over by the framework and the flat
// output record produced by the assembler.
package event

import (
	"fmt"
	"math"
)

// Detector tags carried on chamber match records.
const (
	// DetectorME0 marks a forward ME0 chamber; every other value is a
	// standard barrel/endcap station.
	DetectorME0 = 5
)

// PDG identifier magnitudes used throughout the selection.
const (
	PDGElectron = 11
	PDGMuon     = 13
)

// Kinematics is the four-momentum summary every candidate carries.
// It is embedded by value so candidate types satisfy match.Object.
type Kinematics struct {
	Pt   float64
	Eta  float64
	Phi  float64
	Mass float64
}

// Kin returns the receiver; it exists so any embedding type satisfies the
// matching engine's Object constraint without further code.
func (k Kinematics) Kin() Kinematics { return k }

// P returns the momentum magnitude, pt*cosh(eta).
func (k Kinematics) P() float64 { return k.Pt * math.Cosh(k.Eta) }

// SegmentMatch is a candidate hit segment reconstructed inside a chamber,
// in the chamber's local frame.
type SegmentMatch struct {
	X, Y       float64 // local position (cm)
	XErr, YErr float64 // position variance terms
	DXDZ, DYDZ float64 // local direction slopes
}

// ChamberMatch records where a propagated track crossed a chamber, plus the
// segments found nearby. Positions and slopes are in the chamber-local frame.
type ChamberMatch struct {
	Detector   int    // detector tag; DetectorME0 for forward chambers
	ChamberID  uint32 // geometry key for the chamber
	X, Y       float64
	XErr, YErr float64
	DXDZ, DYDZ float64
	Segments   []SegmentMatch
}

// Muon is a reconstructed muon candidate.
type Muon struct {
	Kinematics
	Charge int

	// Standard-detector identification flags supplied by the upstream
	// reconstruction; consumed through classify.StandardMuonID.
	StandardLoose  bool
	StandardMedium bool
	StandardTight  bool

	// Forward-track flag and chamber match records for the ME0 matcher.
	IsME0Muon bool
	Chambers  []ChamberMatch

	// Inner-track summary. HasInnerTrack guards all of the fields below.
	HasInnerTrack  bool
	TrackVX        float64 // track reference point (cm)
	TrackVY        float64
	TrackVZ        float64
	ValidPixelHits int
	HighPurity     bool

	// Lepton-subtracted puppi isolation sums.
	ChargedHadronIso float64
	NeutralHadronIso float64
	PhotonIso        float64
}

// RelIso is the relative isolation: summed puppi deposits over pt.
func (m *Muon) RelIso() float64 {
	return (m.ChargedHadronIso + m.NeutralHadronIso + m.PhotonIso) / m.Pt
}

// DXY is the transverse impact parameter of the best track with respect to
// the given vertex, following the usual linear track parameterization.
func (m *Muon) DXY(v *Vertex) float64 {
	return -(m.TrackVX-v.X)*math.Sin(m.Phi) + (m.TrackVY-v.Y)*math.Cos(m.Phi)
}

// DZ is the longitudinal impact parameter with respect to the given vertex.
func (m *Muon) DZ(v *Vertex) float64 {
	dx := m.TrackVX - v.X
	dy := m.TrackVY - v.Y
	return (m.TrackVZ - v.Z) - (dx*math.Cos(m.Phi)+dy*math.Sin(m.Phi))*math.Sinh(m.Eta)
}

// Electron is a reconstructed electron candidate.
type Electron struct {
	Kinematics
	Charge int

	SuperClusterEta float64
	SigmaIetaIeta   float64 // full 5x5 shower-shape width
	DeltaEtaSCTrack float64 // supercluster-track eta delta at vertex
	DeltaPhiSCTrack float64 // supercluster-track phi delta at vertex
	HcalOverEcal    float64
	EcalEnergy      float64
	ESCOverP        float64 // supercluster energy over track momentum

	SumChargedHadronPt float64 // PF charged-hadron isolation sum

	// GsfTrackID keys the conversion veto; negative when no track exists.
	GsfTrackID int

	// Lepton-subtracted puppi isolation sums.
	ChargedHadronIso float64
	NeutralHadronIso float64
	PhotonIso        float64
}

// RelIso is the relative isolation: summed puppi deposits over pt.
func (e *Electron) RelIso() float64 {
	return (e.ChargedHadronIso + e.NeutralHadronIso + e.PhotonIso) / e.Pt
}

// Jet is a reconstructed jet. The loose/tight quality flags come from the
// standard PF jet-ID selector, which runs upstream.
type Jet struct {
	Kinematics

	LooseID bool
	TightID bool

	// BTags maps discriminant channel names to values; the channel names
	// used for the output record are configuration.
	BTags map[string]float64

	PartonFlavour int
	HadronFlavour int
	GenPartonPID  int // pdg id of the matched generator parton, 0 if none
}

// BTag returns the summed discriminant over the named channels. Channels
// absent from the jet contribute zero.
func (j *Jet) BTag(channels ...string) float64 {
	var sum float64
	for _, ch := range channels {
		sum += j.BTags[ch]
	}
	return sum
}

// MET is the missing transverse energy of the event.
type MET struct {
	Pt  float64
	Phi float64
}

// PFCandidate is a particle-flow candidate.
type PFCandidate struct {
	Kinematics
	PID        int // signed pdg id
	HighPurity bool
}

// GenParticle is a stable generator-level particle.
type GenParticle struct {
	Kinematics
	PID int // signed pdg id
}

// IsLepton reports whether the particle is a generator electron or muon.
func (g *GenParticle) IsLepton() bool {
	return abs(g.PID) == PDGElectron || abs(g.PID) == PDGMuon
}

// GenJet is a generator-level jet with its constituent particles.
type GenJet struct {
	Kinematics
	PID          int
	Constituents []Kinematics
}

// Vertex is a reconstructed interaction point.
type Vertex struct {
	X, Y, Z float64
	IsFake  bool
	NDOF    float64
}

// Valid reports whether the vertex qualifies as a primary-vertex candidate.
func (v *Vertex) Valid() bool { return !v.IsFake && v.NDOF > 4 }

// Beamspot is the luminous-region center.
type Beamspot struct {
	X, Y, Z float64
}

// Conversion is a reconstructed photon-conversion candidate used by the
// electron identification veto.
type Conversion struct {
	TrackIDs      []int   // ids of the tracks forming the conversion
	VtxProb       float64 // fit probability of the conversion vertex
	VtxX, VtxY    float64 // transverse vertex position (cm)
	HitsBeforeVtx int     // track hits upstream of the conversion vertex
}

// Event bundles all per-event input collections. It is created by the
// framework layer, read-only inside the pipeline, and discarded afterwards;
// no state survives across events.
type Event struct {
	Run    uint32
	Lumi   uint32
	Number uint64

	Vertices     []Vertex
	Muons        []Muon
	Electrons    []Electron
	Jets         []Jet
	METs         []MET
	PFCandidates []PFCandidate
	GenJets      []GenJet
	GenParticles []GenParticle

	Conversions []Conversion
	Beamspot    Beamspot
}

// ID returns the run:lumi:event key used for idempotency tracking.
func (e *Event) ID() string {
	return fmt.Sprintf("%d:%d:%d", e.Run, e.Lumi, e.Number)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
