package simevents

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/geometry"
)

// Synthetic ME0 station layout: one ring of trapezoidal chambers per endcap.
const (
	chambersPerRing = 18
	stationZ        = 527.0 // cm, station center distance from the origin
	stationRadius   = 100.0 // cm, radial position of the chamber centers
	layerHalfSpan   = 14.0  // cm, local z of the outermost layers
)

// chamberID packs endcap and ring position into a stable geometry key.
func chamberID(endcap, position int) uint32 {
	return uint32(endcap)<<8 | uint32(position)
}

// BuildSnapshot constructs the synthetic two-endcap chamber geometry. Chamber
// local frames are oriented so local z points away from the interaction point.
func BuildSnapshot() (*geometry.Snapshot, error) {
	chambers := make(map[uint32]*geometry.Chamber, 2*chambersPerRing)
	for endcap := 0; endcap < 2; endcap++ {
		zSign := 1.0
		if endcap == 1 {
			zSign = -1.0
		}
		for pos := 0; pos < chambersPerRing; pos++ {
			phi := 2 * math.Pi * float64(pos) / chambersPerRing
			center := r3.Vector{
				X: stationRadius * math.Cos(phi),
				Y: stationRadius * math.Sin(phi),
				Z: zSign * stationZ,
			}
			// Local x along the azimuthal direction; local y radial,
			// signed so x cross y points along +/-z with the endcap.
			xAxis := r3.Vector{X: -math.Sin(phi), Y: math.Cos(phi)}
			yAxis := r3.Vector{X: math.Cos(phi), Y: math.Sin(phi)}.Mul(-zSign)

			c, err := geometry.NewChamber(center, xAxis, yAxis, -layerHalfSpan, layerHalfSpan)
			if err != nil {
				return nil, err
			}
			chambers[chamberID(endcap, pos)] = c
		}
	}
	return geometry.NewSnapshot(chambers), nil
}

// chamberForPhi returns the geometry key of the chamber covering the given
// azimuth on the endcap matching the sign of eta.
func chamberForPhi(eta, phi float64) uint32 {
	endcap := 0
	if eta < 0 {
		endcap = 1
	}
	if phi < 0 {
		phi += 2 * math.Pi
	}
	pos := int(math.Round(phi*chambersPerRing/(2*math.Pi))) % chambersPerRing
	return chamberID(endcap, pos)
}
