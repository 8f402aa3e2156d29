package strata

import "github.com/zoobzio/capitan"

// Field keys for engine and bridge events.
var (
	// KeyState is the registration key of the state involved.
	KeyState = capitan.NewStringKey("state")

	// KeyPhase is the phase in which a hook faulted.
	KeyPhase = capitan.NewStringKey("phase")

	// KeyBefore is the value being exited, or "<disabled>".
	KeyBefore = capitan.NewStringKey("before")

	// KeyAfter is the value being entered, or "<disabled>".
	KeyAfter = capitan.NewStringKey("after")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyTick is the tick counter.
	KeyTick = capitan.NewIntKey("tick")

	// KeyStates is the number of registered states.
	KeyStates = capitan.NewIntKey("states")

	// KeyFlushed is the number of states that flushed in a tick.
	KeyFlushed = capitan.NewIntKey("flushed")

	// KeyInterval is the configured runner tick interval.
	KeyInterval = capitan.NewDurationKey("interval")
)
