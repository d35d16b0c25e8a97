// Package main starts the post ingester binary.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamsense/sentiment-worker/internal/broker"
	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/ingest"
	"github.com/streamsense/sentiment-worker/internal/log"
)

func run() int {
	logger := log.New()
	logger.Info("Starting post ingester")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Info("Configuration loaded successfully")
	logger.Info("Redis: %s, Stream: %s", cfg.Redis.Address, cfg.Redis.Stream)
	logger.Info("Rate: %d posts per minute", cfg.Ingest.PostsPerMinute)

	producer, err := broker.NewProducer(&cfg.Redis, cfg.Ingest.StreamMaxLen, logger)
	if err != nil {
		logger.Fatal("Failed to create stream producer: %v", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("Error closing stream producer: %v", err)
		}
	}()
	logger.Info("Connected to Redis")

	runner := ingest.NewRunner(producer, &cfg.Ingest, logger)
	return runMainLoop(runner, logger)
}

func runMainLoop(runner *ingest.Runner, logger *log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, stopping ingester", sig)
		cancel()
		logger.Info("Ingester stopped")
		return 0

	case err := <-errChan:
		logger.Error("Ingester error: %v", err)
		cancel()
		return 1
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
