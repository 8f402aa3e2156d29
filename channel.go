package strata

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
)

// Callback is a hook invoked around a state transition. The Transition
// carries the pre-commit current value and the pending value; either side
// may be nil depending on the phase. Returning an error aborts the tick.
type Callback[S comparable] func(ctx context.Context, tr Transition[S]) error

// Transition is an immutable view of a flush: the value being exited and
// the value being entered. A nil side means disabled.
type Transition[S comparable] struct {
	Before *S
	After  *S
}

type valueHook[S comparable] struct {
	match Pattern[S]
	fn    Callback[S]
}

type pairHook[S comparable] struct {
	match TransPattern[S]
	fn    Callback[S]
}

// anyChannel is the type-erased face of a channel, letting the engine
// schedule heterogeneous state types through one resolve order.
type anyChannel interface {
	key() string
	dependencies() (after, before []string)
	beginTick()
	resolveHasStarted() bool
	resolve(ctx context.Context) error
	apply(ctx context.Context) bool
}

// channel is the per-type current/next/flush triple plus its hooks,
// compute function, and flush event subscribers.
type channel[S comparable] struct {
	eng  *Engine
	name string

	store Storage[S]
	stack *Stack[S] // non-nil when stack-backed
	flush bool

	detect    bool
	eq        func(a, b S) bool
	computeFn func(ctx context.Context) (S, bool)
	triggers  []func(ctx context.Context) error

	exitHooks  []valueHook[S]
	enterHooks []valueHook[S]
	transHooks []pairHook[S]
	anyExit    []Callback[S]
	anyEnter   []Callback[S]
	anyTrans   []Callback[S]
	anyFlush   []Callback[S]

	subs     []chan FlushEvent[S]
	eventBuf int

	after  []string
	before []string

	started bool // resolve has started this tick
}

func newChannel[S comparable](eng *Engine, name string) *channel[S] {
	return &channel[S]{
		eng:      eng,
		name:     name,
		store:    NewSlot[S](),
		detect:   true,
		eq:       func(a, b S) bool { return a == b },
		eventBuf: defaultEventBuffer,
	}
}

func (c *channel[S]) key() string {
	return c.name
}

func (c *channel[S]) dependencies() (after, before []string) {
	return c.after, c.before
}

func (c *channel[S]) beginTick() {
	c.started = false
}

func (c *channel[S]) resolveHasStarted() bool {
	return c.started
}

// changed reports whether the pending value differs from the committed one
// under the channel's equality: presence differs, or both present and not
// equal.
func (c *channel[S]) changed() bool {
	cur, curOK := c.store.Current()
	next, nextOK := c.store.Next()
	if curOK != nextOK {
		return true
	}
	return curOK && !c.eq(cur, next)
}

// resolve runs the Compute, Trigger, and Flush phases for this channel.
// The commit itself happens later in apply, after every channel has
// resolved.
func (c *channel[S]) resolve(ctx context.Context) error {
	c.started = true

	// Compute
	if c.computeFn != nil {
		if v, ok := c.computeFn(ctx); ok {
			c.store.SetNext(v)
		} else {
			c.store.ClearNext()
		}
	}

	// Trigger
	for _, fn := range c.triggers {
		if err := fn(ctx); err != nil {
			return c.fault(ctx, PhaseTrigger, err)
		}
	}
	if !c.flush && c.detect && c.changed() {
		c.flush = true
	}
	if !c.flush {
		return nil
	}

	cur, curOK := c.store.Current()
	next, nextOK := c.store.Next()
	tr := Transition[S]{}
	if curOK {
		v := cur
		tr.Before = &v
	}
	if nextOK {
		v := next
		tr.After = &v
	}

	// Exit
	if curOK {
		for _, h := range c.exitHooks {
			if !h.match(cur) {
				continue
			}
			if err := h.fn(ctx, tr); err != nil {
				return c.fault(ctx, PhaseExit, err)
			}
		}
		for _, fn := range c.anyExit {
			if err := fn(ctx, tr); err != nil {
				return c.fault(ctx, PhaseExit, err)
			}
		}
	}

	// Trans
	if curOK && nextOK {
		for _, h := range c.transHooks {
			if !h.match(cur, next) {
				continue
			}
			if err := h.fn(ctx, tr); err != nil {
				return c.fault(ctx, PhaseTrans, err)
			}
		}
		for _, fn := range c.anyTrans {
			if err := fn(ctx, tr); err != nil {
				return c.fault(ctx, PhaseTrans, err)
			}
		}
	}

	// Enter
	if nextOK {
		for _, h := range c.enterHooks {
			if !h.match(next) {
				continue
			}
			if err := h.fn(ctx, tr); err != nil {
				return c.fault(ctx, PhaseEnter, err)
			}
		}
		for _, fn := range c.anyEnter {
			if err := fn(ctx, tr); err != nil {
				return c.fault(ctx, PhaseEnter, err)
			}
		}
	}

	// Any-flush hooks, independent of which sides are present.
	for _, fn := range c.anyFlush {
		if err := fn(ctx, tr); err != nil {
			return c.fault(ctx, PhaseFlush, err)
		}
	}

	return nil
}

// apply commits the pending value, resets the flush flag, and publishes
// the flush event. Returns true if a flush was committed.
func (c *channel[S]) apply(ctx context.Context) bool {
	if !c.flush {
		return false
	}

	ev := FlushEvent[S]{}
	if before, ok := c.store.Current(); ok {
		v := before
		ev.Before = &v
	}
	c.store.Commit()
	if after, ok := c.store.Current(); ok {
		v := after
		ev.After = &v
	}
	c.flush = false

	for _, sub := range c.subs {
		sendEvent(sub, ev)
	}

	capitan.Emit(ctx, StateFlushed,
		KeyState.Field(c.name),
		KeyBefore.Field(describe(ev.Before)),
		KeyAfter.Field(describe(ev.After)),
	)
	if c.eng.metrics != nil {
		c.eng.metrics.OnStateFlushed(c.name)
	}
	return true
}

func (c *channel[S]) fault(ctx context.Context, phase Phase, err error) error {
	capitan.Emit(ctx, HookFaulted,
		KeyState.Field(c.name),
		KeyPhase.Field(phase.String()),
		KeyError.Field(err.Error()),
	)
	return &HookFaultError{Key: c.name, Phase: phase, Err: err}
}

// write applies a mutation now, or defers it to the next tick if this
// channel's resolve phase has already started.
func (c *channel[S]) write(mut func()) {
	c.eng.stage(c, mut)
}

// describe formats an optional state value for signal fields.
func describe[S comparable](v *S) string {
	if v == nil {
		return "<disabled>"
	}
	return fmt.Sprint(*v)
}
