// Package app provides the selection pipeline service: dedupe in front of a
// bounded queue, a pool of assembly workers over a shared read-only geometry
// snapshot, and a record store at the end.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/geometry"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/mq/queue"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/mq/worker"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/adapters/repository"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/assemble"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/classify"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/dedupe"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/me0"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/metrics"
)

// Service runs the event-selection pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	geo     *geometry.Snapshot
	store   repository.Store
	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool

	// Synchronous assembler for the filter-style selection path.
	assembler *assemble.Assembler

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	variant         me0.Variant
	acceptance      assemble.Acceptance
	csvv2Channel    string
	deepCSVChannels []string

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of assembly workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the event-id dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithME0Variant picks the forward-muon matching strategy.
func WithME0Variant(v me0.Variant) Option {
	return func(s *Service) {
		if v != "" {
			s.variant = v
		}
	}
}

// WithAcceptance overrides the kinematic gates.
func WithAcceptance(acc assemble.Acceptance) Option {
	return func(s *Service) { s.acceptance = acc }
}

// WithBTagChannels sets the discriminant channel names for the jet output.
func WithBTagChannels(csvv2 string, deepCSV ...string) Option {
	return func(s *Service) {
		if csvv2 != "" {
			s.csvv2Channel = csvv2
		}
		if len(deepCSV) > 0 {
			s.deepCSVChannels = deepCSV
		}
	}
}

// WithStore replaces the default in-memory record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service over a run-scoped geometry snapshot. The snapshot
// is shared read-only by every worker and must not be mutated mid-run.
func New(geo *geometry.Snapshot, opts ...Option) *Service {
	s := &Service{
		geo:             geo,
		workerCount:     runtime.NumCPU(),
		queueSize:       10_000,
		dedupeSize:      100_000,
		variant:         me0.VariantAngleEta,
		acceptance:      assemble.DefaultAcceptance(),
		csvv2Channel:    classify.DefaultCSVv2Channel,
		deepCSVChannels: []string{classify.DefaultDeepCSVProbB, classify.DefaultDeepCSVProbBB},
		log:             logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newAssembler builds one assembler instance; each worker gets its own.
func (s *Service) newAssembler() (*assemble.Assembler, error) {
	strategy, err := me0.NewStrategy(s.variant, s.geo)
	if err != nil {
		return nil, err
	}
	return assemble.New(
		classify.NewMuonClassifier(strategy),
		classify.NewElectronClassifier(),
		classify.NewJetClassifier(
			classify.WithCSVv2Channel(s.csvv2Channel),
			classify.WithDeepCSVChannels(s.deepCSVChannels...),
		),
		assemble.WithAcceptance(s.acceptance),
		assemble.WithLogger(s.log),
	), nil
}

// Start wires the pipeline and launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	// Fail early on a bad strategy configuration, and keep one assembler
	// for the synchronous selection path.
	syncAssembler, err := s.newAssembler()
	if err != nil {
		return fmt.Errorf("build assembler: %w", err)
	}
	s.assembler = syncAssembler

	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	s.deduper = dedupe.NewRingDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	s.pool = worker.NewPool(s.workerCount, s.queue, func() worker.Assembler {
		a, buildErr := s.newAssembler()
		if buildErr != nil {
			// Unreachable: the same configuration built syncAssembler.
			panic(buildErr)
		}
		return a
	}, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.log.Info(ctx, "pipeline started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.String("me0_variant", string(s.variant)),
		logger.Int("chambers", s.geo.Size()),
	)
	return nil
}

// Submit offers one event to the pipeline. Duplicates and backpressure are
// reported as typed errors; neither is fatal to the run.
func (s *Service) Submit(ctx context.Context, ev *event.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}

	id := ev.ID()
	if s.deduper.SeenAndRecord(ctx, id) {
		metrics.RecordEventDuplicate()
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, id)
	}
	if !s.queue.Enqueue(ctx, ev) {
		// Roll back so a later retry is not treated as a duplicate.
		s.deduper.Unrecord(ctx, id)
		return fmt.Errorf("%w: %s", ErrQueueFull, id)
	}
	return nil
}

// SelectMuonTiers runs the filter-style muon selection synchronously,
// bypassing the queue. Safe to call concurrently with Submit.
func (s *Service) SelectMuonTiers(ctx context.Context, ev *event.Event) (event.MuonTiers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return event.MuonTiers{}, ErrNotStarted
	}
	return s.assembler.SelectMuonTiers(ctx, ev), nil
}

// Records returns the completed records so far.
func (s *Service) Records(ctx context.Context) []*event.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return nil
	}
	return s.store.Records(ctx)
}

// RecordCount returns the number of completed records.
func (s *Service) RecordCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return 0
	}
	return s.store.Count(ctx)
}

// QueueDepth returns the number of queued events.
func (s *Service) QueueDepth(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.queue == nil {
		return 0
	}
	return s.queue.Len(ctx)
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("pool shutdown: %w", err)
	}
	s.started = false
	s.log.Info(ctx, "pipeline stopped")
	return nil
}
