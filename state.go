package strata

import "context"

// State is the typed handle for one registered state type. It is the only
// type-safe access point to the channel: configuration before Build, hook
// registration, and the control surface for reads and staged writes.
type State[S comparable] struct {
	ch *channel[S]
}

// -----------------------------------------------------------------------------
// Chainable Configuration
// -----------------------------------------------------------------------------
// Configuration uses chainable methods on the handle before calling Build().

// Initial stages an initial value. The state enters it on the first tick,
// firing enter hooks. Must be called before Build().
func (h *State[S]) Initial(v S) *State[S] {
	h.ch.store.SetNext(v)
	return h
}

// Storage replaces the storage backend. Default: Slot.
// Must be called before Build().
func (h *State[S]) Storage(st Storage[S]) *State[S] {
	h.ch.store = st
	if stack, ok := st.(*Stack[S]); ok {
		h.ch.stack = stack
	} else {
		h.ch.stack = nil
	}
	return h
}

// After declares that this state resolves after the given states, so its
// compute function may read their already-resolved pending values.
// Must be called before Build().
func (h *State[S]) After(keys ...string) *State[S] {
	h.ch.after = append(h.ch.after, keys...)
	return h
}

// Before declares that this state resolves before the given states.
// Must be called before Build().
func (h *State[S]) Before(keys ...string) *State[S] {
	h.ch.before = append(h.ch.before, keys...)
	return h
}

// Compute registers a derivation that runs every tick in the Compute
// phase. Returning false clears the pending value, disabling the state.
// The function may read the pending values of states this one is After.
// Must be called before Build().
func (h *State[S]) Compute(fn func(ctx context.Context) (S, bool)) *State[S] {
	h.ch.computeFn = fn
	return h
}

// Equality overrides the change-detection equality. Default: ==.
// Must be called before Build().
func (h *State[S]) Equality(fn func(a, b S) bool) *State[S] {
	h.ch.eq = fn
	return h
}

// ManualFlush disables change detection. The state then flushes only when
// SetFlush(true) is called explicitly. Must be called before Build().
func (h *State[S]) ManualFlush() *State[S] {
	h.ch.detect = false
	return h
}

// EventBuffer sets the capacity of subscriber channels. Default: 16.
// Must be called before Build().
func (h *State[S]) EventBuffer(n int) *State[S] {
	if n > 0 {
		h.ch.eventBuf = n
	}
	return h
}

// -----------------------------------------------------------------------------
// Control Surface
// -----------------------------------------------------------------------------

// Key returns the registration key.
func (h *State[S]) Key() string {
	return h.ch.name
}

// Current returns the committed value, or false if the state is disabled.
func (h *State[S]) Current() (S, bool) {
	return h.ch.store.Current()
}

// Next returns the pending value, or false if the state will disable.
func (h *State[S]) Next() (S, bool) {
	return h.ch.store.Next()
}

// Set stages a pending value. A write landing after this state's resolve
// phase has started in the current tick is deferred to the next tick.
func (h *State[S]) Set(v S) {
	h.ch.write(func() { h.ch.store.SetNext(v) })
}

// Clear removes the pending value, disabling the state on the next apply.
// Subject to the same deferral rule as Set.
func (h *State[S]) Clear() {
	h.ch.write(func() { h.ch.store.ClearNext() })
}

// SetFlush forces or suppresses the flush flag ahead of the Trigger
// phase. Subject to the same deferral rule as Set.
func (h *State[S]) SetFlush(b bool) {
	h.ch.write(func() { h.ch.flush = b })
}

// IsEnabled reports whether the state currently holds a committed value.
func (h *State[S]) IsEnabled() bool {
	_, ok := h.ch.store.Current()
	return ok
}

// WillBeEnabled reports whether the state holds a pending value.
func (h *State[S]) WillBeEnabled() bool {
	_, ok := h.ch.store.Next()
	return ok
}

// Subscribe returns a stream of flush events for this state, delivered
// once per flush after Apply. Delivery never blocks a tick: when the
// buffer is full the oldest unconsumed event is dropped.
func (h *State[S]) Subscribe() <-chan FlushEvent[S] {
	ch := make(chan FlushEvent[S], h.ch.eventBuf)
	h.ch.subs = append(h.ch.subs, ch)
	return ch
}

// -----------------------------------------------------------------------------
// Hook Registration
// -----------------------------------------------------------------------------

// OnExit runs fn during the Exit phase of a flush when the pre-commit
// current value matches the pattern.
func (h *State[S]) OnExit(p Pattern[S], fn Callback[S]) *State[S] {
	h.ch.exitHooks = append(h.ch.exitHooks, valueHook[S]{match: p, fn: fn})
	return h
}

// OnEnter runs fn during the Enter phase of a flush when the pending value
// matches the pattern.
func (h *State[S]) OnEnter(p Pattern[S], fn Callback[S]) *State[S] {
	h.ch.enterHooks = append(h.ch.enterHooks, valueHook[S]{match: p, fn: fn})
	return h
}

// OnTrans runs fn during the Trans phase of a flush when both sides are
// present and match the pair pattern.
func (h *State[S]) OnTrans(p TransPattern[S], fn Callback[S]) *State[S] {
	h.ch.transHooks = append(h.ch.transHooks, pairHook[S]{match: p, fn: fn})
	return h
}

// OnEdge registers an exit hook and an enter hook in one call.
func (h *State[S]) OnEdge(exitFn, enterFn Callback[S]) *State[S] {
	return h.OnExit(Any[S](), exitFn).OnEnter(Any[S](), enterFn)
}

// OnAnyExit runs fn whenever the state is enabled during a flush,
// regardless of value.
func (h *State[S]) OnAnyExit(fn Callback[S]) *State[S] {
	h.ch.anyExit = append(h.ch.anyExit, fn)
	return h
}

// OnAnyEnter runs fn whenever the state will be enabled after a flush,
// regardless of value.
func (h *State[S]) OnAnyEnter(fn Callback[S]) *State[S] {
	h.ch.anyEnter = append(h.ch.anyEnter, fn)
	return h
}

// OnAnyTrans runs fn whenever the state is enabled before and after a
// flush, regardless of whether the value changed.
func (h *State[S]) OnAnyTrans(fn Callback[S]) *State[S] {
	h.ch.anyTrans = append(h.ch.anyTrans, fn)
	return h
}

// OnFlush runs fn on every flush of this state, independent of which
// sides are present.
func (h *State[S]) OnFlush(fn Callback[S]) *State[S] {
	h.ch.anyFlush = append(h.ch.anyFlush, fn)
	return h
}

// -----------------------------------------------------------------------------
// Stack-backed states
// -----------------------------------------------------------------------------

// StackState is the handle for a stack-backed state, adding push and pop
// on top of the regular control surface.
type StackState[S comparable] struct {
	State[S]
}

// Push stages a value on top of the stack, making it the pending value.
// Subject to the same deferral rule as Set.
func (h *StackState[S]) Push(v S) {
	h.ch.write(func() { h.ch.stack.Push(v) })
}

// Pop removes the top of the stack; the element below becomes the pending
// value, or the state disables if the stack empties. Returns false if the
// stack was empty at the time of the call.
func (h *StackState[S]) Pop() bool {
	if h.ch.stack.Depth() == 0 {
		return false
	}
	h.ch.write(func() { h.ch.stack.Pop() })
	return true
}

// Depth returns the number of values on the stack.
func (h *StackState[S]) Depth() int {
	return h.ch.stack.Depth()
}
