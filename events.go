package strata

// FlushEvent is an immutable snapshot of a committed flush, published once
// per flushed state per tick, after Apply. A nil side means disabled.
type FlushEvent[S comparable] struct {
	Before *S
	After  *S
}

// defaultEventBuffer is the default capacity of a subscriber channel.
const defaultEventBuffer = 16

// sendEvent delivers an event without blocking the tick. When the
// subscriber's buffer is full, the oldest unconsumed event is dropped.
func sendEvent[S comparable](ch chan FlushEvent[S], ev FlushEvent[S]) {
	for {
		select {
		case ch <- ev:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
