package geometry

import "errors"

// Sentinel kinds for geometry errors.
var (
	ErrUnknownChamber  = errors.New("chamber not in geometry snapshot")
	ErrDegenerateFrame = errors.New("degenerate chamber frame")
)
