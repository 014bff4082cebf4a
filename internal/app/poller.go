package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/imagestrip/internal/client"
	"github.com/five82/imagestrip/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the session
// summary in store. After failures the wait grows exponentially up to
// maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, fetcher client.StatusFetcher, id string, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			failures := refresh(ctx, store, fetcher, id, logger)
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// refresh polls once and returns the number of consecutive failures.
func refresh(ctx context.Context, store *state.Store, fetcher client.StatusFetcher, id string, logger *log.Logger) int {
	status, err := fetcher.FetchStatus(ctx, id)
	if err != nil && ctx.Err() != nil {
		return 0
	}
	store.Update(status, err)
	if err != nil && logger != nil {
		logger.Warn("status poll failed", "session", id, "error", err)
	}
	return store.Snapshot().ConsecutiveFailures
}

// calculateBackoff doubles base for every consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 16 {
		return maxBackoff
	}
	d := base << failures
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
