package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record already stored for event")
)
