// Package main starts the sentiment worker binary: the stream consumer
// pipeline, the alert monitor and the optional HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/streamsense/sentiment-worker/internal/alert"
	"github.com/streamsense/sentiment-worker/internal/analysis"
	"github.com/streamsense/sentiment-worker/internal/api"
	"github.com/streamsense/sentiment-worker/internal/broker"
	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/notify"
	"github.com/streamsense/sentiment-worker/internal/store"
	"github.com/streamsense/sentiment-worker/internal/worker"
)

type services struct {
	broker  *broker.Client
	store   *store.Store
	sink    notify.Sink
	pool    *worker.Pool
	monitor *alert.Monitor
	api     *api.Server // nil when the API is disabled
}

func run() int {
	logger := log.New()
	logger.Info("Starting sentiment worker")

	cfg, err := loadAndLogConfig(logger)
	if err != nil {
		return 1
	}

	svc, err := initializeServices(cfg, logger)
	if err != nil {
		return 1
	}
	defer closeServices(svc, logger)

	return runMainLoop(svc, cfg, logger)
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	logger.Info("Configuration loaded successfully")
	logger.Info("Redis: %s, Stream: %s, Group: %s", cfg.Redis.Address, cfg.Redis.Stream, cfg.Redis.Group)
	logger.Info("Pipeline: %d analysis workers, batch size %d", cfg.Pipeline.AnalysisWorkers, cfg.Redis.BatchSize)
	logger.Info("Alerting: window %s, threshold %.2f", cfg.Alert.Window, cfg.Alert.NegativeRatioThreshold)
	if cfg.API.Enabled {
		logger.Info("API: %s", cfg.API.Address)
	}
	return cfg, nil
}

func initializeServices(cfg *config.Config, logger *log.Logger) (*services, error) {
	brokerClient, err := broker.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to create stream consumer: %v", err)
	}
	logger.Info("Connected to Redis as consumer %s", cfg.Redis.Consumer)

	st, err := store.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("Failed to ensure database schema: %v", err)
	}

	sink, err := notify.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create event sink: %v", err)
	}

	chain := analysis.NewChain(logger,
		analysis.NewLocal(cfg.Analyzer.LocalTimeout),
		analysis.NewExternal(&cfg.Analyzer, logger),
		analysis.Default{},
	)

	svc := &services{
		broker:  brokerClient,
		store:   st,
		sink:    sink,
		pool:    worker.New(brokerClient, st, chain, sink, cfg, logger),
		monitor: alert.New(st, sink, &cfg.Alert, logger),
	}
	if cfg.API.Enabled {
		svc.api = api.New(st, brokerClient, &cfg.API, logger)
	}
	return svc, nil
}

func closeServices(svc *services, logger *log.Logger) {
	if err := svc.pool.Close(); err != nil {
		logger.Error("Error closing worker pool: %v", err)
	}
	if err := svc.sink.Close(); err != nil {
		logger.Error("Error closing event sink: %v", err)
	}
	if err := svc.store.Close(); err != nil {
		logger.Error("Error closing database: %v", err)
	}
	if err := svc.broker.Close(); err != nil {
		logger.Error("Error closing stream consumer: %v", err)
	}
}

func runMainLoop(svc *services, cfg *config.Config, logger *log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	errChan := make(chan error, 3)
	start := func(name string, runFn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runFn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	start("worker pool", svc.pool.Run)
	start("alert monitor", svc.monitor.Run)
	if svc.api != nil {
		start("api server", svc.api.Run)
	}

	logger.Info("Pipeline started")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, initiating graceful shutdown", sig)
		cancel()
		return handleGracefulShutdown(&wg, cfg, logger)

	case err := <-errChan:
		logger.Error("Pipeline error: %v", err)
		cancel()
		handleGracefulShutdown(&wg, cfg, logger)
		return 1
	}
}

// handleGracefulShutdown waits for the pipeline goroutines to drain
// in-flight batches, bounded by the shutdown timeout.
func handleGracefulShutdown(wg *sync.WaitGroup, cfg *config.Config, logger *log.Logger) int {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Graceful shutdown completed")
		logger.Info("Worker stopped")
		return 0
	case <-shutdownCtx.Done():
		logger.Error("Shutdown timeout exceeded")
		return 1
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
