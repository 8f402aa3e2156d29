/*
Package strata provides a state-flush scheduling engine: a set of
independently-typed state values advanced once per tick, with lifecycle
hooks invoked in a globally consistent order derived from declared
dependencies between state types.

# Model

Each registered state type owns a channel: a committed current value, a
pending next value, and a flush flag. An absent current value means the
state is disabled. Every tick, each state runs a staged pipeline in
dependency order:

	Compute → Trigger → Flush(Exit → Trans → Enter) → Apply

Compute optionally derives the pending value from the pending values of
states it is declared After. Trigger raises the flush flag when the
pending value differs from the committed one, or when a flush was forced.
The flush phases run pattern-gated hooks against the outgoing and
incoming values. Apply runs after every state has resolved, committing
all flushing states at one barrier, so no state observes another's commit
mid-tick.

# Usage

Register states on an engine, declare dependencies, build, and tick:

	e := strata.NewEngine()

	game, _ := strata.Add[GameState](e, "game")
	game.Initial(Splash)

	paused, _ := strata.Add[Paused](e, "paused")
	paused.After("game").Compute(func(ctx context.Context) (Paused, bool) {
	    v, ok := game.Next()
	    return Paused{}, ok && v == Playing
	})

	game.OnExit(strata.Is(Playing), saveProgress)
	game.OnEnter(strata.Any[GameState](), loadScreen)

	if err := e.Build(); err != nil {
	    log.Fatal(err)
	}
	for range ticker.C {
	    if err := e.Tick(ctx); err != nil {
	        log.Fatal(err)
	    }
	}

A hook returning an error aborts the tick before anything commits; the
engine never retries.

# Storage

The pending/committed pair lives behind the Storage interface. Slot is
the default; AddStack registers a stack of values where popping uncovers
the previous one. Custom backends implement Storage.

# Bridging

A Bridge mirrors one state type through an external representation: a
Watcher (file via fsnotify, channel, or custom) feeds decoded and
validated values in, and a Sink receives committed values going out,
first-write-wins per tick.

# Observability

Engine, tick, flush, and bridge activity is emitted as capitan signals
with typed field keys, and a MetricsProvider interface accepts callbacks
for metrics systems. Per-state flush events are available as typed
streams via Subscribe.
*/
package strata
