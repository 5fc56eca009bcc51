// Package repository defines the output-record store interface and its
// in-memory implementation. Persisting records to an ntuple file is the
// framework's concern; the pipeline only needs completed records held and
// retrievable by event id.
package repository

import (
	"context"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
)

// Store provides access to completed event records.
type Store interface {
	// Put appends a completed record.
	Put(ctx context.Context, rec *event.Record) error

	// Get returns the record for a run/lumi/event triple.
	// Returns ErrNotFound for unknown events.
	Get(ctx context.Context, run, lumi uint32, number uint64) (*event.Record, error)

	// Records returns all records in completion order.
	Records(ctx context.Context) []*event.Record

	// Count returns the number of records held.
	Count(ctx context.Context) int
}
