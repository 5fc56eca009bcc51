// Package worker runs the per-event selection asynchronously: each worker
// drains the queue, assembles the output record with its own assembler
// instance, and hands the record to the sink.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Assembler builds one output record per event. Workers never share an
// assembler; the geometry snapshot behind it is read-only and shared.
type Assembler interface {
	Assemble(ctx context.Context, ev *event.Event) (*event.Record, error)
}

// Sink receives completed records.
type Sink interface {
	Put(ctx context.Context, rec *event.Record) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan *event.Event
}

// Worker processes events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// EventWorker implements Worker over one assembler instance.
type EventWorker struct {
	queue     Queue
	assembler Assembler
	sink      Sink
	name      string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// NewEventWorker creates a worker with configuration options.
func NewEventWorker(queue Queue, assembler Assembler, sink Sink, opts ...Option) *EventWorker {
	w := &EventWorker{
		queue:     queue,
		assembler: assembler,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		log:       logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.log = w.log.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *EventWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, ev); err != nil {
				w.log.Error(ctx, "event processing failed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *EventWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent assembles one event and stores the record.
func (w *EventWorker) processEvent(ctx context.Context, ev *event.Event) error {
	start := time.Now()

	rec, err := w.assembler.Assemble(ctx, ev)
	metrics.RecordAssemblyLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordWorkerError()
		w.log.Error(ctx, "assembly failed",
			logger.String("event", ev.ID()),
			logger.Error(err),
		)
		return fmt.Errorf("assemble event %s: %w", ev.ID(), err)
	}

	if err := w.sink.Put(ctx, rec); err != nil {
		metrics.RecordWorkerError()
		w.log.Error(ctx, "record store failed",
			logger.String("event", ev.ID()),
			logger.Error(err),
		)
		return fmt.Errorf("store record for event %s: %w", ev.ID(), err)
	}

	metrics.RecordEventProcessed()
	return nil
}

// Pool manages multiple workers, one assembler instance each.
type Pool struct {
	workers []*EventWorker
	queue   Queue

	shutdown chan struct{}

	log logger.Logger
}

// NewPool creates a pool of workerCount workers. newAssembler is called once
// per worker so output buffers are never shared.
func NewPool(workerCount int, queue Queue, newAssembler func() Assembler, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*EventWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		log:      logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewEventWorker(
			queue,
			newAssembler(),
			sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.log.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.log.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
