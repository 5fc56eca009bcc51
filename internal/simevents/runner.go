package simevents

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/app"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/event"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/me0"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
)

// Simulated run coordinates. One simulation is one run; the event number
// spans the configured count.
const (
	simRun       = 1
	simLumi      = 1
	drainPoll    = 50 * time.Millisecond
	defaultDrain = 30 * time.Second
)

// Run generates cfg.NumEvents synthetic events, pushes them through a fresh
// pipeline, waits for the pipeline to drain and returns the tallies.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrain
	}

	log := logger.Get().Named("simevents")
	sampleID := uuid.New().String()
	log.Info(ctx, "starting simulation",
		logger.String("sample", sampleID),
		logger.Int("events", cfg.NumEvents),
		logger.Int("workers", cfg.Workers),
		logger.String("me0_variant", cfg.ME0Variant),
	)

	geo, err := BuildSnapshot()
	if err != nil {
		return nil, fmt.Errorf("build geometry: %w", err)
	}

	opts := []app.Option{
		app.WithME0Variant(me0.Variant(cfg.ME0Variant)),
	}
	if cfg.QueueSize > 0 {
		opts = append(opts, app.WithQueueSize(cfg.QueueSize))
	}
	if cfg.PoolSize > 0 {
		opts = append(opts, app.WithWorkerCount(cfg.PoolSize))
	}
	service := app.New(geo, opts...)
	if err := service.Start(ctx); err != nil {
		return nil, fmt.Errorf("start pipeline: %w", err)
	}

	stats := &Stats{StartTime: time.Now()}
	submitted, duplicate, rejected := submitAll(ctx, cfg, service)
	stats.EventsGenerated = cfg.NumEvents
	stats.EventsSubmitted = int(submitted)
	stats.EventsDuplicate = int(duplicate)
	stats.EventsRejected = int(rejected)

	if err := waitForDrain(ctx, cfg, service, int(submitted)); err != nil {
		log.Warn(ctx, "pipeline did not drain", logger.Error(err))
	}
	if err := service.Stop(ctx); err != nil {
		return nil, fmt.Errorf("stop pipeline: %w", err)
	}

	stats.RecordsStored = service.RecordCount(ctx)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "simulation finished",
		logger.String("sample", sampleID),
		logger.Int("submitted", stats.EventsSubmitted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("rejected", stats.EventsRejected),
		logger.Int("records", stats.RecordsStored),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, nil
}

// submitAll fans the event range out over cfg.Workers submitters. Duplicate
// submissions are injected on top of the unique range when configured, so
// the dedupe path sees traffic too.
func submitAll(ctx context.Context, cfg *Config, service *app.Service) (submitted, duplicate, rejected int64) {
	var wg sync.WaitGroup
	perWorker := cfg.NumEvents / cfg.Workers

	for w := 0; w < cfg.Workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if w == cfg.Workers-1 {
			end = cfg.NumEvents
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				ev := GenerateEvent(simRun, simLumi, uint64(i))
				submitOne(ctx, service, ev, &submitted, &duplicate, &rejected)

				if cfg.DuplicateEvery > 0 && i%cfg.DuplicateEvery == 0 {
					dup := GenerateEvent(simRun, simLumi, uint64(i))
					submitOne(ctx, service, dup, &submitted, &duplicate, &rejected)
				}
			}
		}(start, end)
	}
	wg.Wait()
	return submitted, duplicate, rejected
}

func submitOne(ctx context.Context, service *app.Service, ev *event.Event, submitted, duplicate, rejected *int64) {
	err := service.Submit(ctx, ev)
	switch {
	case err == nil:
		atomic.AddInt64(submitted, 1)
	case errors.Is(err, app.ErrDuplicateEvent):
		atomic.AddInt64(duplicate, 1)
	default:
		atomic.AddInt64(rejected, 1)
	}
}

// waitForDrain polls the store until every accepted event has a record.
func waitForDrain(ctx context.Context, cfg *Config, service *app.Service, expected int) error {
	deadline := time.Now().Add(cfg.DrainTimeout)
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()

	for {
		if service.RecordCount(ctx) >= expected {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("drain timeout after %s: %d of %d records",
				cfg.DrainTimeout, service.RecordCount(ctx), expected)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
