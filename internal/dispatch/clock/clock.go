// Package clock drives the dispatcher from an in-process ticker for
// deployments without an external scheduler.
package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-server/internal/dispatch"
	"crm-server/internal/observability"
)

// Ticker runs one dispatch tick
type Ticker interface {
	Tick(ctx context.Context) (dispatch.TickResult, error)
}

// Clock periodically triggers dispatch ticks
type Clock struct {
	ticker   Ticker
	logger   *observability.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a new dispatch clock
func New(ticker Ticker, logger *observability.Logger, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &Clock{
		ticker:   ticker,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the clock loop until ctx is cancelled or Stop is called.
func (c *Clock) Start(ctx context.Context) {
	c.logger.Info(ctx, fmt.Sprintf("Starting dispatch clock with %v interval", c.interval))

	t := time.NewTicker(c.interval)
	defer t.Stop()

	// Run immediately on start
	c.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info(ctx, "Dispatch clock stopping: context cancelled")
			return
		case <-c.stopChan:
			c.logger.Info(ctx, "Dispatch clock stopping: stop signal received")
			return
		case <-t.C:
			c.tick(ctx)
		}
	}
}

// Stop signals the clock to stop
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Clock) tick(ctx context.Context) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "operation", Value: "dispatch_tick"},
	)

	if _, err := c.ticker.Tick(ctx); err != nil {
		c.logger.Error(ctx, "Dispatch tick failed", err)
	}
}
