package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/app"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/config"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/assemble"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/domain/me0"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/internal/simevents"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/logger"
	"github.com/AlejandroNava87/PhaseTwoAnalysis/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second

	// feedInterval paces the synthetic event source that stands in for a
	// detector frontend.
	feedInterval = 10 * time.Millisecond
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Chamber geometry for the forward-muon matcher. The synthetic station
	// layout stands in until a real alignment source is hooked up.
	geo, err := simevents.BuildSnapshot()
	if err != nil {
		os.Stderr.WriteString("failed to build geometry: " + err.Error() + "\n")
		return
	}

	svc := app.New(geo,
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithME0Variant(me0.Variant(cfg.ME0Variant)),
		app.WithAcceptance(assemble.Acceptance{
			LeptonMinPt:     cfg.LeptonMinPt,
			LeptonMaxEta:    cfg.LeptonMaxEta,
			JetMinPt:        cfg.JetMinPt,
			JetMaxEta:       cfg.JetMaxEta,
			FilterMuonMinPt: cfg.FilterMuonMinPt,
			GenJetIsoMaxDR:  cfg.GenJetIsoMaxDR,
		}),
		app.WithBTagChannels(cfg.CSVv2Channel, cfg.DeepCSVChannels...),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}

	go startServiceMetricsUpdater(ctx, svc)
	go startEventFeed(ctx, svc)

	// Metrics and health endpoints.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "stopped",
		logger.Int("records", svc.RecordCount(shutdownCtx)))
}

// startEventFeed pushes synthetic events through the pipeline at a steady
// rate until the context ends. Duplicates and backpressure are expected
// outcomes, not failures.
func startEventFeed(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	var number uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ev := simevents.GenerateEvent(1, 1, number)
			number++
			if err := svc.Submit(ctx, ev); err != nil &&
				!errors.Is(err, app.ErrDuplicateEvent) && !errors.Is(err, app.ErrQueueFull) {
				logger.Get().Warn(ctx, "submit failed", logger.Error(err))
			}
		}
	}
}

// startServiceMetricsUpdater refreshes service-level gauges periodically.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateQueueSize(svc.QueueDepth(ctx))
			metrics.UpdateRecordsHeld(svc.RecordCount(ctx))
		}
	}
}
