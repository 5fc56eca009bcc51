// Package simevents generates synthetic detector events and drives them
// through the selection pipeline. It exists for load testing and for
// exercising the full pipeline without real detector input.
package simevents

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	NumEvents      int           // Number of events to generate
	Workers        int           // Number of concurrent submitters
	QueueSize      int           // Pipeline queue capacity
	PoolSize       int           // Pipeline worker count
	ME0Variant     string        // Forward-muon matching variant
	DuplicateEvery int           // Resubmit every Nth event (0 disables)
	DrainTimeout   time.Duration // How long to wait for the pipeline to drain
	Verbose        bool          // Enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	EventsGenerated int
	EventsSubmitted int
	EventsDuplicate int
	EventsRejected  int
	RecordsStored   int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
