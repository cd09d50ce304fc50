package engine

import (
	"context"
	"time"
)

func (e *Engine) poll(every time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.Trigger()
		case <-e.ctx.Done():
			return
		}
	}
}

// Monitor probes connectivity every interval until ctx is done, moving the
// engine online or offline when the probe result changes.
func (e *Engine) Monitor(ctx context.Context, every time.Duration, probe func(context.Context) error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	online := e.State() != Offline
	for {
		err := probe(ctx)
		switch {
		case ctx.Err() != nil || e.ctx.Err() != nil:
			return
		case err == nil && !online:
			e.log.Infow("monitor", "status", "server reachable")
			e.NetworkOnline()
			online = true
		case err != nil && online:
			e.log.Infow("monitor", "status", "server unreachable", "ERROR", err)
			e.NetworkOffline()
			online = false
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-e.ctx.Done():
			return
		}
	}
}
