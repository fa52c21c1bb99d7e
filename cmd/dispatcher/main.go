package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"crm-server/internal/bootstrap"
	"crm-server/internal/config"
	"crm-server/internal/dispatch/clock"
	"crm-server/internal/observability"
)

func main() {
	logger := observability.NewLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize dependencies", err)
	}
	defer deps.Cleanup()

	dispatchClock := clock.New(deps.Dispatcher, logger, cfg.Dispatch.ClockInterval)

	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatchClock.Start(ctx)
	}()

	logger.Info(ctx, fmt.Sprintf("Dispatcher running in %s every %v", cfg.Dispatch.Timezone, cfg.Dispatch.ClockInterval))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down dispatcher...")
	dispatchClock.Stop()
	<-done
	logger.Info(ctx, "Dispatcher stopped")
}
