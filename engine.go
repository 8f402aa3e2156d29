package strata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Engine owns the registered state channels and advances them once per
// Tick in the dependency order frozen by Build.
//
// A tick runs each channel's resolve phases (Compute, Trigger, Flush) in
// order, then commits every flushing channel at a single apply barrier.
// No channel's commit is observable by another channel in the same tick;
// dependents read pending values instead.
type Engine struct {
	channels map[string]anyChannel
	names    []string // registration order
	order    []anyChannel
	built    bool

	clock   clockz.Clock
	metrics MetricsProvider

	mu       sync.Mutex
	inTick   bool
	deferred []func()

	tick      atomic.Int64
	lastError atomic.Pointer[error]
	history   *faultRing
}

// NewEngine creates an empty engine. Register states with Add or
// AddStack, then call Build before the first Tick.
func NewEngine() *Engine {
	return &Engine{
		channels: make(map[string]anyChannel),
		clock:    clockz.RealClock,
	}
}

// Clock sets a custom clock used for tick timing in metrics.
// Must be called before Build().
func (e *Engine) Clock(clock clockz.Clock) *Engine {
	e.clock = clock
	return e
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Build().
func (e *Engine) Metrics(provider MetricsProvider) *Engine {
	e.metrics = provider
	return e
}

// ErrorHistorySize sets the number of recent tick faults to retain.
// Use 0 (default) to only retain the most recent fault via LastError().
// Must be called before Build().
func (e *Engine) ErrorHistorySize(n int) *Engine {
	e.history = newFaultRing(n)
	return e
}

// Add registers a state type under a stable key and returns its typed
// handle. Registration is idempotent: adding an existing key with the
// same value type returns the existing handle; a different value type or
// storage kind is a ConflictError. Registration after Build is an error.
func Add[S comparable](e *Engine, key string) (*State[S], error) {
	if e.built {
		return nil, ErrAlreadyBuilt
	}
	if existing, ok := e.channels[key]; ok {
		ch, ok := existing.(*channel[S])
		if !ok {
			return nil, &ConflictError{Key: key, Reason: "registered with a different value type"}
		}
		return &State[S]{ch: ch}, nil
	}
	ch := newChannel[S](e, key)
	e.channels[key] = ch
	e.names = append(e.names, key)
	return &State[S]{ch: ch}, nil
}

// AddStack registers a stack-backed state type, seeded with the given
// values bottom first. The same idempotence rules as Add apply; a key
// already registered with non-stack storage is a ConflictError.
func AddStack[S comparable](e *Engine, key string, initial ...S) (*StackState[S], error) {
	if e.built {
		return nil, ErrAlreadyBuilt
	}
	if existing, ok := e.channels[key]; ok {
		ch, ok := existing.(*channel[S])
		if !ok {
			return nil, &ConflictError{Key: key, Reason: "registered with a different value type"}
		}
		if ch.stack == nil {
			return nil, &ConflictError{Key: key, Reason: "registered with non-stack storage"}
		}
		return &StackState[S]{State[S]{ch: ch}}, nil
	}
	ch := newChannel[S](e, key)
	stack := NewStack[S](initial...)
	ch.store = stack
	ch.stack = stack
	e.channels[key] = ch
	e.names = append(e.names, key)
	return &StackState[S]{State[S]{ch: ch}}, nil
}

// Build resolves the declared after/before edges into a frozen resolve
// order. Unknown edge targets and cycles are build errors; Tick assumes
// an already-validated order. Build can only be called once.
func (e *Engine) Build() error {
	if e.built {
		return ErrAlreadyBuilt
	}

	edges := make(map[string][]string, len(e.names))
	for _, name := range e.names {
		ch := e.channels[name]
		after, before := ch.dependencies()
		for _, a := range after {
			if _, ok := e.channels[a]; !ok {
				return &UnknownStateError{Key: name, Edge: a}
			}
			edges[a] = append(edges[a], name)
		}
		for _, b := range before {
			if _, ok := e.channels[b]; !ok {
				return &UnknownStateError{Key: name, Edge: b}
			}
			edges[name] = append(edges[name], b)
		}
	}

	order, err := topoOrder(e.names, edges)
	if err != nil {
		return err
	}
	e.order = make([]anyChannel, len(order))
	for i, name := range order {
		e.order[i] = e.channels[name]
	}
	e.built = true

	capitan.Emit(context.Background(), EngineBuilt,
		KeyStates.Field(len(e.order)),
	)
	return nil
}

// Order returns the frozen resolve order of state keys. Empty before Build.
func (e *Engine) Order() []string {
	keys := make([]string, len(e.order))
	for i, ch := range e.order {
		keys[i] = ch.key()
	}
	return keys
}

// Tick advances every state by one scheduling step: deferred writes from
// the previous tick are replayed, every channel resolves in dependency
// order, then all flushing channels commit at the apply barrier.
//
// The first hook fault aborts the tick before the barrier, so no state is
// ever half-applied. Tick is not reentrant.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	if !e.built {
		e.mu.Unlock()
		return ErrNotBuilt
	}
	if e.inTick {
		e.mu.Unlock()
		return ErrTickInProgress
	}
	e.inTick = true
	pending := e.deferred
	e.deferred = nil
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inTick = false
		e.mu.Unlock()
	}()

	start := e.clock.Now()
	tick := int(e.tick.Add(1))
	capitan.Emit(ctx, TickStarted, KeyTick.Field(tick))

	for _, mut := range pending {
		mut()
	}
	for _, ch := range e.order {
		ch.beginTick()
	}

	for _, ch := range e.order {
		if err := ch.resolve(ctx); err != nil {
			e.setError(tick, err)
			capitan.Emit(ctx, TickFaulted,
				KeyTick.Field(tick),
				KeyError.Field(err.Error()),
			)
			if e.metrics != nil {
				stage := "resolve"
				var fault *HookFaultError
				if errors.As(err, &fault) {
					stage = fault.Phase.String()
				}
				e.metrics.OnTickFault(stage, e.clock.Since(start))
			}
			return err
		}
	}

	flushed := 0
	for _, ch := range e.order {
		if ch.apply(ctx) {
			flushed++
		}
	}

	e.lastError.Store(nil)
	e.history.clear()
	capitan.Emit(ctx, TickCompleted,
		KeyTick.Field(tick),
		KeyFlushed.Field(flushed),
	)
	if e.metrics != nil {
		e.metrics.OnTickSuccess(e.clock.Since(start))
	}
	return nil
}

// LastError returns the fault that aborted the most recent tick, or nil
// if the most recent tick succeeded.
func (e *Engine) LastError() error {
	ptr := e.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns recent tick faults, oldest first, each stamped
// with the tick it aborted. Returns nil if error history is not enabled
// (see ErrorHistorySize).
func (e *Engine) ErrorHistory() []TickFault {
	return e.history.all()
}

// stage runs a channel mutation now, or defers it to the top of the next
// tick when the channel's resolve phase has already started this tick.
func (e *Engine) stage(c anyChannel, mut func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inTick && c.resolveHasStarted() {
		e.deferred = append(e.deferred, mut)
		if e.metrics != nil {
			e.metrics.OnWriteDeferred(c.key())
		}
		return
	}
	mut()
}

func (e *Engine) setError(tick int, err error) {
	v := err
	e.lastError.Store(&v)
	e.history.push(tick, err)
}
