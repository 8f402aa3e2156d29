package strata

// Storage holds the committed (current) and pending (next) values for one
// state type. An absent current value means the state is disabled; an
// absent next value means it will become disabled on the next commit.
//
// Storage implementations never validate transitions. Deciding whether a
// flush happens is the trigger phase's job; storage only answers get/set
// and moves next into current on Commit.
type Storage[S any] interface {
	// Current returns the committed value, or false if disabled.
	Current() (S, bool)

	// Next returns the pending value, or false if the state will disable.
	Next() (S, bool)

	// SetNext stages a pending value.
	SetNext(S)

	// ClearNext removes the pending value, disabling the state on commit.
	ClearNext()

	// Commit consumes the pending value into the committed value.
	Commit()
}

// Slot is the default storage backend: a single current/next pair.
// After Commit the pending value remains equal to the committed value, so
// change detection stays quiet until something stages a different value.
type Slot[S any] struct {
	current    S
	next       S
	hasCurrent bool
	hasNext    bool
}

// NewSlot creates an empty Slot with no committed or pending value.
func NewSlot[S any]() *Slot[S] {
	return &Slot[S]{}
}

// Current returns the committed value, or false if disabled.
func (s *Slot[S]) Current() (S, bool) {
	return s.current, s.hasCurrent
}

// Next returns the pending value, or false if the state will disable.
func (s *Slot[S]) Next() (S, bool) {
	return s.next, s.hasNext
}

// SetNext stages a pending value.
func (s *Slot[S]) SetNext(v S) {
	s.next = v
	s.hasNext = true
}

// ClearNext removes the pending value.
func (s *Slot[S]) ClearNext() {
	var zero S
	s.next = zero
	s.hasNext = false
}

// Commit moves the pending value into the committed value.
func (s *Slot[S]) Commit() {
	s.current = s.next
	s.hasCurrent = s.hasNext
}

// Ensure Slot implements Storage.
var _ Storage[int] = (*Slot[int])(nil)

// Stack is a storage backend holding a stack of values. The pending value
// is the top of the stack; Push and Pop move one level at a time, and
// ClearNext empties the whole stack.
//
// Popping stages the element below the top as the pending value, so the
// following commit fires exit hooks for the removed value and enter hooks
// for the uncovered one.
type Stack[S any] struct {
	current    S
	hasCurrent bool
	values     []S
}

// NewStack creates a Stack seeded with the given values, bottom first.
// The last value is the initial pending value.
func NewStack[S any](values ...S) *Stack[S] {
	return &Stack[S]{values: append([]S(nil), values...)}
}

// Current returns the committed value, or false if disabled.
func (s *Stack[S]) Current() (S, bool) {
	return s.current, s.hasCurrent
}

// Next returns the top of the stack, or false if the stack is empty.
func (s *Stack[S]) Next() (S, bool) {
	if len(s.values) == 0 {
		var zero S
		return zero, false
	}
	return s.values[len(s.values)-1], true
}

// SetNext replaces the top of the stack, or pushes onto an empty stack.
func (s *Stack[S]) SetNext(v S) {
	if len(s.values) == 0 {
		s.values = append(s.values, v)
		return
	}
	s.values[len(s.values)-1] = v
}

// ClearNext empties the stack, disabling the state on commit.
func (s *Stack[S]) ClearNext() {
	s.values = s.values[:0]
}

// Commit copies the top of the stack into the committed value, or clears
// it when the stack is empty.
func (s *Stack[S]) Commit() {
	if len(s.values) == 0 {
		var zero S
		s.current = zero
		s.hasCurrent = false
		return
	}
	s.current = s.values[len(s.values)-1]
	s.hasCurrent = true
}

// Push appends a value on top of the stack, making it the pending value.
func (s *Stack[S]) Push(v S) {
	s.values = append(s.values, v)
}

// Pop removes the top of the stack. The element below becomes the pending
// value, or the state disables if the stack empties. Returns false if the
// stack was already empty.
func (s *Stack[S]) Pop() bool {
	if len(s.values) == 0 {
		return false
	}
	var zero S
	s.values[len(s.values)-1] = zero
	s.values = s.values[:len(s.values)-1]
	return true
}

// Depth returns the number of values on the stack.
func (s *Stack[S]) Depth() int {
	return len(s.values)
}

// Ensure Stack implements Storage.
var _ Storage[int] = (*Stack[int])(nil)
