package lib

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Heartbeats periodically logs that a long running statement, e.g. a COPY INTO, is still in progress.
type Heartbeats struct {
	// [initialDelay] - The time to wait before the first heartbeat.
	initialDelay time.Duration
	// [interval] - The time between heartbeats.
	interval time.Duration

	message string
	attrs   []any
}

func NewHeartbeats(initialDelay time.Duration, interval time.Duration, message string, attrs ...any) *Heartbeats {
	return &Heartbeats{
		initialDelay: initialDelay,
		interval:     interval,
		message:      message,
		attrs:        attrs,
	}
}

// Start begins logging in the background until the returned function is called or [ctx] is done.
// The returned function blocks until the background goroutine has exited.
func (h *Heartbeats) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.run(ctx, time.Now())
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

func (h *Heartbeats) run(ctx context.Context, start time.Time) {
	timer := time.NewTimer(h.initialDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		slog.Info(h.message, append([]any{slog.Duration("elapsed", time.Since(start))}, h.attrs...)...)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
