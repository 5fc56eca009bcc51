package me0

import "errors"

// Sentinel kinds for matcher construction errors.
var (
	ErrUnknownVariant = errors.New("unknown me0 matching variant")
	ErrNoGeometry     = errors.New("angle/eta matching requires a geometry snapshot")
)
