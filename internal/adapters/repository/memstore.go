package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/metrics"
)

// MemStore implements Store with a mutex-guarded slice plus an event-id
// index. Completion order is append order, which under a worker pool is not
// submission order.
type MemStore struct {
	mu      sync.RWMutex
	records []*event.Record
	byID    map[string]int
}

// NewMemStore creates an empty in-memory record store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		byID: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put appends a completed record. A record for an already-stored event id
// returns ErrDuplicateRecord; dedupe upstream should make this unreachable.
func (s *MemStore) Put(ctx context.Context, rec *event.Record) error {
	key := recordKey(rec.Run, rec.Lumi, rec.Number)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[key]; exists {
		return ErrDuplicateRecord
	}
	s.byID[key] = len(s.records)
	s.records = append(s.records, rec)
	metrics.UpdateRecordsHeld(len(s.records))
	return nil
}

// Get returns the record for a run/lumi/event triple.
func (s *MemStore) Get(ctx context.Context, run, lumi uint32, number uint64) (*event.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[recordKey(run, lumi, number)]
	if !ok {
		return nil, ErrNotFound
	}
	return s.records[idx], nil
}

// Records returns a copy of the record list in completion order.
func (s *MemStore) Records(ctx context.Context) []*event.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*event.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the number of records held.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func recordKey(run, lumi uint32, number uint64) string {
	return fmt.Sprintf("%d:%d:%d", run, lumi, number)
}
