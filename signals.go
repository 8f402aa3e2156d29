package strata

import "github.com/zoobzio/capitan"

// Engine lifecycle signals.
var (
	// EngineBuilt is emitted when the dependency order is resolved.
	EngineBuilt = capitan.NewSignal(
		"strata.engine.built",
		"Engine dependency order resolved",
	)

	// TickStarted is emitted at the top of every tick.
	TickStarted = capitan.NewSignal(
		"strata.tick.started",
		"Tick started",
	)

	// TickCompleted is emitted when a tick commits its apply barrier.
	TickCompleted = capitan.NewSignal(
		"strata.tick.completed",
		"Tick completed",
	)

	// TickFaulted is emitted when a hook fault aborts a tick.
	TickFaulted = capitan.NewSignal(
		"strata.tick.faulted",
		"Tick aborted by a hook fault",
	)
)

// Flush processing signals.
var (
	// StateFlushed is emitted when a state transition is committed.
	StateFlushed = capitan.NewSignal(
		"strata.state.flushed",
		"State transition committed",
	)

	// HookFaulted is emitted when a hook returns an error.
	HookFaulted = capitan.NewSignal(
		"strata.hook.faulted",
		"Hook returned an error",
	)
)

// Runner lifecycle signals.
var (
	// RunnerStarted is emitted when a Runner begins ticking.
	RunnerStarted = capitan.NewSignal(
		"strata.runner.started",
		"Runner ticking started",
	)

	// RunnerStopped is emitted when a Runner stops ticking.
	RunnerStopped = capitan.NewSignal(
		"strata.runner.stopped",
		"Runner ticking stopped",
	)
)

// Bridge signals.
var (
	// BridgeInbound is emitted when an external value is staged as the
	// pending state.
	BridgeInbound = capitan.NewSignal(
		"strata.bridge.inbound",
		"External value staged as next state",
	)

	// BridgeOutbound is emitted when a committed value is published to the
	// external sink.
	BridgeOutbound = capitan.NewSignal(
		"strata.bridge.outbound",
		"Committed state published to external sink",
	)

	// BridgeRejected is emitted when an external value fails decoding or
	// validation, or the sink rejects a publish.
	BridgeRejected = capitan.NewSignal(
		"strata.bridge.rejected",
		"External value failed decode or validation",
	)
)
