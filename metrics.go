package strata

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key engine events.
type MetricsProvider interface {
	// OnTickSuccess is called when a tick commits its apply barrier.
	// Duration is the time taken by the whole tick.
	OnTickSuccess(duration time.Duration)

	// OnTickFault is called when a hook fault aborts a tick.
	// Stage is the phase that faulted: "trigger", "exit", "trans",
	// "enter", or "flush".
	OnTickFault(stage string, duration time.Duration)

	// OnStateFlushed is called when a state transition is committed.
	OnStateFlushed(key string)

	// OnWriteDeferred is called when a write arrives after the target
	// state's resolve phase and is queued for the next tick.
	OnWriteDeferred(key string)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnTickSuccess(_ time.Duration)         {}
func (NoOpMetricsProvider) OnTickFault(_ string, _ time.Duration) {}
func (NoOpMetricsProvider) OnStateFlushed(_ string)               {}
func (NoOpMetricsProvider) OnWriteDeferred(_ string)              {}
