package strata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Runner drives an engine at a fixed tick interval. It is the only
// goroutine the library runs against an engine, so the single-threaded
// scheduling contract holds as long as external writers stay off the
// handles mid-tick.
type Runner struct {
	eng      *Engine
	interval time.Duration
	clock    clockz.Clock
	onError  func(error)

	mu      sync.Mutex
	started bool
}

// NewRunner creates a Runner ticking the engine at the given interval.
func NewRunner(eng *Engine, interval time.Duration) *Runner {
	return &Runner{
		eng:      eng,
		interval: interval,
		clock:    clockz.RealClock,
	}
}

// Clock sets a custom clock for tick scheduling.
// Use this with clockz.FakeClock for deterministic tests.
// Must be called before Run().
func (r *Runner) Clock(clock clockz.Clock) *Runner {
	r.clock = clock
	return r
}

// OnError sets a callback invoked when a tick faults. With a callback
// set, the runner keeps ticking after a fault; without one, Run returns
// the fault. Must be called before Run().
func (r *Runner) OnError(fn func(error)) *Runner {
	r.onError = fn
	return r
}

// Run ticks the engine until the context is canceled or, when no OnError
// callback is set, a tick faults. Run can only be called once.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("runner already started")
	}
	r.started = true
	r.mu.Unlock()

	capitan.Emit(ctx, RunnerStarted,
		KeyInterval.Field(r.interval),
	)
	defer capitan.Emit(ctx, RunnerStopped)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C():
			if err := r.eng.Tick(ctx); err != nil {
				if r.onError == nil {
					return err
				}
				r.onError(err)
			}
		}
	}
}
