package app

import (
	"context"
	"slices"
	"time"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that re-reads the client
// directory at a fixed cadence and sends the list whenever it changes. The
// returned channel is closed when ctx is cancelled. It returns immediately.
func StartPoller(ctx context.Context, dir library.Directory, initial []library.Client, interval time.Duration, log *logger.Logger) <-chan []library.Client {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = logger.Nop()
	}

	updates := make(chan []library.Client)
	go func() {
		defer close(updates)

		last := initial
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			clients, err := refresh(ctx, dir)
			if err != nil {
				failures++
				wait := calculateBackoff(failures, interval)
				log.Warn().Err(err).Int("failures", failures).Dur("retry_in", wait).Msg("client directory poll failed")
				timer.Reset(wait)
				continue
			}
			if failures > 0 {
				log.Info().Int("failures", failures).Msg("client directory poll recovered")
			}
			failures = 0

			if !slices.Equal(clients, last) {
				last = clients
				select {
				case updates <- clients:
				case <-ctx.Done():
					return
				}
			}
			timer.Reset(interval)
		}
	}()
	return updates
}

func refresh(ctx context.Context, dir library.Directory) ([]library.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, maxBackoff)
	defer cancel()
	return dir.Clients(ctx)
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
