package repository

import "github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithInitialCapacity pre-sizes the record slice for long runs.
func WithInitialCapacity(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.records = make([]*event.Record, 0, n)
			s.byID = make(map[string]int, n)
		}
	}
}
