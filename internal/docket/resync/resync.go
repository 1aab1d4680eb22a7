// Package resync reloads the repository from the store when the backing
// data may have changed underneath it.
package resync

import (
	"context"
	"time"

	"github.com/colonyops/docket/internal/core/logging"
)

// Reloader re-reads state from the store and reports how many todos it
// recovered.
type Reloader interface {
	ReloadFromStore(ctx context.Context) (int, error)
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(ctx context.Context) (int, error)

// ReloadFromStore calls f.
func (f ReloaderFunc) ReloadFromStore(ctx context.Context) (int, error) { return f(ctx) }

// Start reloads r whenever trigger fires or, when interval is positive, on
// every tick. Either source may be disabled by passing nil or a
// non-positive interval. It blocks until the context is cancelled.
func Start(ctx context.Context, r Reloader, trigger <-chan struct{}, interval time.Duration) {
	log := logging.Component("resync")
	ctx = logging.WithOperation(ctx, "resync")

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	reload := func(reason string) {
		n, err := r.ReloadFromStore(ctx)
		if err != nil {
			log.Warn().Ctx(ctx).Err(err).Str("reason", reason).Msg("resync failed")
			return
		}
		log.Debug().Ctx(ctx).Int("todos", n).Str("reason", reason).Msg("resynced")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
			reload("change")
		case <-tick:
			reload("interval")
		}
	}
}
