package app

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("service already started")

	// ErrNotStarted is returned when events are submitted before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrDuplicateEvent is returned for an event id already seen this run.
	ErrDuplicateEvent = errors.New("duplicate event")

	// ErrQueueFull is returned when the event queue is at capacity.
	ErrQueueFull = errors.New("queue full")
)
