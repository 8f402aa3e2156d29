package strata

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is returned by Build when the declared after/before edges
	// cannot be satisfied by any ordering.
	ErrCycle = errors.New("strata: dependency graph contains a cycle")

	// ErrAlreadyBuilt is returned when registration or Build happens after
	// the engine has already been built.
	ErrAlreadyBuilt = errors.New("strata: engine already built")

	// ErrNotBuilt is returned by Tick when Build has not been called.
	ErrNotBuilt = errors.New("strata: engine not built")

	// ErrTickInProgress is returned by Tick when called reentrantly.
	ErrTickInProgress = errors.New("strata: tick already in progress")
)

// ConflictError reports an incompatible re-registration of a state key.
type ConflictError struct {
	Key    string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("strata: conflicting registration for state %q: %s", e.Key, e.Reason)
}

// UnknownStateError reports a dependency edge that references a state key
// that was never registered.
type UnknownStateError struct {
	Key  string
	Edge string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("strata: state %q declares an edge on unknown state %q", e.Key, e.Edge)
}

// HookFaultError wraps the first error returned by a hook or trigger
// function during a tick. The tick is aborted before any state is
// committed, so no channel is ever observed half-applied.
type HookFaultError struct {
	Key   string
	Phase Phase
	Err   error
}

func (e *HookFaultError) Error() string {
	return fmt.Sprintf("strata: hook fault in state %q during %s: %v", e.Key, e.Phase, e.Err)
}

func (e *HookFaultError) Unwrap() error {
	return e.Err
}
