// Package scheduler runs background jobs on a fixed interval.
package scheduler

import (
	"context"
	"time"
)

// Every runs job immediately and then once per interval until ctx is
// cancelled. The immediate run doubles as the startup warm-up. Jobs own
// their failures; nothing propagates back to the loop.
func Every(ctx context.Context, interval time.Duration, job func(ctx context.Context)) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		job(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				job(ctx)
			}
		}
	}()
}
