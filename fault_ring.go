package strata

import "sync"

// TickFault is one retained tick failure: the value of the tick counter
// when the fault aborted the tick, and the error that caused it.
type TickFault struct {
	Tick int
	Err  error
}

// faultRing is a thread-safe ring buffer retaining the most recent tick
// faults, oldest first. A healthy tick clears it.
type faultRing struct {
	mu     sync.RWMutex
	faults []TickFault
	size   int
	head   int
	count  int
}

// newFaultRing creates a fault ring with the given capacity.
// If size is 0, the ring is disabled.
func newFaultRing(size int) *faultRing {
	if size <= 0 {
		return nil
	}
	return &faultRing{
		faults: make([]TickFault, size),
		size:   size,
	}
}

// push records a fault against the tick it aborted.
func (r *faultRing) push(tick int, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.faults[r.head] = TickFault{Tick: tick, Err: err}
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// clear removes all retained faults.
func (r *faultRing) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.faults {
		r.faults[i] = TickFault{}
	}
	r.head = 0
	r.count = 0
}

// all returns the retained faults, oldest first.
func (r *faultRing) all() []TickFault {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	result := make([]TickFault, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.faults[(start+i)%r.size]
	}
	return result
}
