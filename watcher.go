package strata

import "context"

// Watcher observes an external source for changes and emits raw bytes on
// a channel. The bridge decodes each value and stages it as the pending
// state during the Trigger phase.
//
// Implementations should emit the current value immediately upon Watch()
// being called so the external side can seed the initial state.
type Watcher interface {
	// Watch begins observing the source and returns a channel that emits
	// raw bytes when changes occur. The channel is closed when the context
	// is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}
