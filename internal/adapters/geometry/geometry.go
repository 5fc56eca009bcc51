// Package geometry wraps the detector-geometry lookup needed by the forward
// muon matcher: chamber id to local-to-global transform plus the chamber-level
// bend-angle computation.
//
// A Snapshot is built once per processing run and is read-only afterwards, so
// it may be shared freely across workers.
package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// LocalPoint is a position in a chamber's local frame (cm).
type LocalPoint struct {
	X, Y, Z float64
}

// LocalVector is a direction in a chamber's local frame, conventionally
// normalized so Z == 1 for track slopes.
type LocalVector struct {
	X, Y, Z float64
}

// GlobalPoint is a position in the detector global frame.
type GlobalPoint struct {
	v r3.Vector
}

// Eta returns the pseudorapidity of the point's direction from the origin.
// Points on the beam axis yield +/-Inf, which callers treat as unmatched.
func (p GlobalPoint) Eta() float64 {
	rho := math.Hypot(p.v.X, p.v.Y)
	if rho == 0 {
		return math.Inf(int(math.Copysign(1, p.v.Z)))
	}
	return math.Asinh(p.v.Z / rho)
}

// Phi returns the azimuthal angle in (-pi, pi].
func (p GlobalPoint) Phi() float64 {
	return math.Atan2(p.v.Y, p.v.X)
}

// X, Y and Z expose the global coordinates.
func (p GlobalPoint) X() float64 { return p.v.X }
func (p GlobalPoint) Y() float64 { return p.v.Y }
func (p GlobalPoint) Z() float64 { return p.v.Z }

// Chamber is a rigid detector unit: an orthonormal local frame placed in the
// global one, plus the z extent of its first and last sensitive layers.
type Chamber struct {
	center r3.Vector
	xAxis  r3.Vector
	yAxis  r3.Vector
	zAxis  r3.Vector

	// Local z of the first and last layer planes, used by ComputeDeltaPhi.
	zFirst float64
	zLast  float64
}

// NewChamber builds a chamber from its global center, the global directions
// of its local x and y axes, and the local z positions of the first and last
// layers. The axes are normalized; the local z axis completes the right-handed
// frame. Degenerate axes return ErrDegenerateFrame.
func NewChamber(center, xAxis, yAxis r3.Vector, zFirst, zLast float64) (*Chamber, error) {
	if xAxis.Norm() == 0 || yAxis.Norm() == 0 {
		return nil, ErrDegenerateFrame
	}
	x := xAxis.Normalize()
	y := yAxis.Normalize()
	z := x.Cross(y)
	if z.Norm() < 1e-9 {
		return nil, ErrDegenerateFrame
	}
	return &Chamber{
		center: center,
		xAxis:  x,
		yAxis:  y,
		zAxis:  z.Normalize(),
		zFirst: zFirst,
		zLast:  zLast,
	}, nil
}

// ToGlobal transforms a chamber-local point into the global frame.
func (c *Chamber) ToGlobal(p LocalPoint) GlobalPoint {
	g := c.center.
		Add(c.xAxis.Mul(p.X)).
		Add(c.yAxis.Mul(p.Y)).
		Add(c.zAxis.Mul(p.Z))
	return GlobalPoint{v: g}
}

// ComputeDeltaPhi returns the bend angle of a local trajectory across the
// chamber: the wrapped global-phi difference between the trajectory's
// intersections with the last and first layer planes.
//
// A trajectory parallel to the layer planes (dir.Z == 0) has no defined bend;
// the resulting non-finite value propagates into cut comparisons, which then
// evaluate false.
func (c *Chamber) ComputeDeltaPhi(pos LocalPoint, dir LocalVector) float64 {
	low := c.ToGlobal(extrapolateToZ(pos, dir, c.zFirst))
	high := c.ToGlobal(extrapolateToZ(pos, dir, c.zLast))
	return wrapPhi(high.Phi() - low.Phi())
}

// extrapolateToZ slides a local point along dir until its z equals extZ.
func extrapolateToZ(p LocalPoint, dir LocalVector, extZ float64) LocalPoint {
	return LocalPoint{
		X: p.X + extZ*dir.X/dir.Z,
		Y: p.Y + extZ*dir.Y/dir.Z,
		Z: extZ,
	}
}

// Snapshot is the run-scoped chamber lookup. It must not be mutated once
// handed to the pipeline.
type Snapshot struct {
	chambers map[uint32]*Chamber
}

// NewSnapshot builds a snapshot from the given chambers. The map is copied.
func NewSnapshot(chambers map[uint32]*Chamber) *Snapshot {
	cp := make(map[uint32]*Chamber, len(chambers))
	for id, c := range chambers {
		cp[id] = c
	}
	return &Snapshot{chambers: cp}
}

// Chamber resolves a chamber id against the snapshot. Ids outside the
// geometry return ErrUnknownChamber.
func (s *Snapshot) Chamber(id uint32) (*Chamber, error) {
	c, ok := s.chambers[id]
	if !ok {
		return nil, ErrUnknownChamber
	}
	return c, nil
}

// Size returns the number of chambers in the snapshot.
func (s *Snapshot) Size() int { return len(s.chambers) }

// wrapPhi maps an angle difference into (-pi, pi].
func wrapPhi(phi float64) float64 {
	for phi > math.Pi {
		phi -= 2 * math.Pi
	}
	for phi <= -math.Pi {
		phi += 2 * math.Pi
	}
	return phi
}
