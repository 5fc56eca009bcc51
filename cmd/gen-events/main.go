package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/simevents"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumEvents  = 10000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultDuplicates = 100
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		numEvents  = flag.Int("events", defaultNumEvents, "Number of events to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		poolSize   = flag.Int("pool", 0, "Pipeline worker count (default: CPU cores)")
		queueSize  = flag.Int("queue", 0, "Pipeline queue capacity (default: 10000)")
		variant    = flag.String("variant", "angle_eta", "Forward-muon matching variant: angle_eta or pull_distance")
		duplicates = flag.Int("dup-every", defaultDuplicates, "Resubmit every Nth event to exercise dedupe (0 disables)")
		drain      = flag.Duration("drain", 0, "How long to wait for the pipeline to drain")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simevents.Config{
		NumEvents:      *numEvents,
		Workers:        *workers,
		QueueSize:      *queueSize,
		PoolSize:       *poolSize,
		ME0Variant:     *variant,
		DuplicateEvery: *duplicates,
		DrainTimeout:   *drain,
		Verbose:        *verbose,
	}

	stats, err := simevents.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("generated %d events: %d submitted, %d duplicate, %d rejected, %d records in %s\n",
		stats.EventsGenerated, stats.EventsSubmitted, stats.EventsDuplicate,
		stats.EventsRejected, stats.RecordsStored, stats.Duration.Round(time.Millisecond))
}
