package strata

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
)

// validate is the shared validator instance for bridge inbound data.
var validate = validator.New()

// Sink receives the encoded committed value when a flush originated
// inside the engine. Pair it with a Watcher to mirror state both ways.
type Sink func(ctx context.Context, data []byte) error

// FileSink returns a Sink that writes the encoded value to a file,
// the counterpart of FileWatcher.
func FileSink(path string) Sink {
	return func(_ context.Context, data []byte) error {
		return os.WriteFile(path, data, 0o600)
	}
}

// Bridge mirrors one state type into and out of an externally-owned
// parallel representation.
//
// Inbound: the watcher emits raw bytes; during the state's Trigger phase
// the latest value is decoded, validated, staged as the pending value,
// and the flush is forced. Outbound: on a flush with no inbound write
// that tick, the committed value is encoded and handed to the sink.
//
// One direction wins per tick: an inbound write during Trigger is
// authoritative; if neither side wrote, nothing happens. Decode,
// validation, and sink failures are recorded and emitted as signals but
// never fault the tick; external data is not a hook.
//
// Outbound publish runs during the flush phase, before the apply
// barrier. If a hook on a later state faults in the same tick, the sink
// may have observed a value the aborted tick never commits.
type Bridge[S comparable] struct {
	st      *State[S]
	watcher Watcher
	sink    Sink
	codec   Codec
	checked bool // struct validation applies to S

	latest    atomic.Pointer[[]byte]
	inbound   bool // an inbound value was staged this tick
	lastError atomic.Pointer[error]

	mu      sync.Mutex
	started bool
}

// NewBridge creates a Bridge between a state handle and an external
// representation. watcher supplies inbound values; sink receives outbound
// values and may be nil for an inbound-only bridge.
//
// Default codec: JSONCodec. Struct state types are validated with
// go-playground/validator tags on the inbound path.
func NewBridge[S comparable](st *State[S], watcher Watcher, sink Sink) *Bridge[S] {
	return &Bridge[S]{
		st:      st,
		watcher: watcher,
		sink:    sink,
		codec:   JSONCodec{},
		checked: reflect.TypeFor[S]().Kind() == reflect.Struct,
	}
}

// Codec sets the codec for bridge data. Default: JSONCodec.
// Must be called before Start().
func (b *Bridge[S]) Codec(codec Codec) *Bridge[S] {
	b.codec = codec
	return b
}

// SkipValidation disables struct-tag validation of inbound values.
// Must be called before Start().
func (b *Bridge[S]) SkipValidation() *Bridge[S] {
	b.checked = false
	return b
}

// LastError returns the last inbound or outbound failure, or nil.
func (b *Bridge[S]) LastError() error {
	ptr := b.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Start hooks the bridge into the state's tick pipeline and begins
// watching the external source. Start can only be called once.
func (b *Bridge[S]) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return fmt.Errorf("bridge already started")
	}
	b.started = true
	b.mu.Unlock()

	changes, err := b.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	ch := b.st.ch
	ch.triggers = append(ch.triggers, b.stage)
	b.st.OnFlush(b.publish)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-changes:
				if !ok {
					return
				}
				b.latest.Store(&raw)
			}
		}
	}()

	return nil
}

// stage runs in the state's Trigger phase. It drains the latest watched
// value, decodes and validates it, and stages it as the authoritative
// pending value for this tick.
func (b *Bridge[S]) stage(ctx context.Context) error {
	b.inbound = false
	rawp := b.latest.Swap(nil)
	if rawp == nil {
		return nil
	}

	var v S
	if err := b.codec.Unmarshal(*rawp, &v); err != nil {
		b.reject(ctx, fmt.Errorf("unmarshal failed: %w", err))
		return nil
	}
	if b.checked {
		if err := validate.Struct(v); err != nil {
			b.reject(ctx, fmt.Errorf("validation failed: %w", err))
			return nil
		}
	}

	ch := b.st.ch
	ch.store.SetNext(v)
	ch.flush = true
	b.inbound = true

	capitan.Emit(ctx, BridgeInbound,
		KeyState.Field(ch.name),
	)
	return nil
}

// publish runs as an on-flush hook. When the flush did not originate from
// the watcher, the pending value is encoded and handed to the sink.
func (b *Bridge[S]) publish(ctx context.Context, tr Transition[S]) error {
	if b.inbound || b.sink == nil || tr.After == nil {
		return nil
	}

	data, err := b.codec.Marshal(*tr.After)
	if err != nil {
		b.reject(ctx, fmt.Errorf("marshal failed: %w", err))
		return nil
	}
	if err := b.sink(ctx, data); err != nil {
		b.reject(ctx, fmt.Errorf("sink failed: %w", err))
		return nil
	}

	capitan.Emit(ctx, BridgeOutbound,
		KeyState.Field(b.st.ch.name),
	)
	return nil
}

// reject records a bridge failure without faulting the tick.
func (b *Bridge[S]) reject(ctx context.Context, err error) {
	e := err
	b.lastError.Store(&e)
	capitan.Emit(ctx, BridgeRejected,
		KeyState.Field(b.st.ch.name),
		KeyError.Field(err.Error()),
	)
}
