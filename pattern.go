package strata

// Pattern matches a single state value. Exit hooks evaluate their pattern
// against the pre-commit current value, enter hooks against the pending
// value. Patterns must be pure: the engine may evaluate them any number of
// times per tick, and only when the owning phase actually runs.
type Pattern[S comparable] func(S) bool

// Is matches exactly the given value.
func Is[S comparable](v S) Pattern[S] {
	return func(s S) bool { return s == v }
}

// Any matches every value. Presence of the relevant side is already
// guaranteed by the phase the hook is registered on.
func Any[S comparable]() Pattern[S] {
	return func(S) bool { return true }
}

// With matches values satisfying an arbitrary predicate. Use this for
// structural matches over fields of the state value.
func With[S comparable](fn func(S) bool) Pattern[S] {
	return fn
}

// In matches any of the given values.
func In[S comparable](values ...S) Pattern[S] {
	return func(s S) bool {
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

// And narrows the pattern to values also matching q.
func (p Pattern[S]) And(q Pattern[S]) Pattern[S] {
	return func(s S) bool { return p(s) && q(s) }
}

// Or widens the pattern to values matching either side.
func (p Pattern[S]) Or(q Pattern[S]) Pattern[S] {
	return func(s S) bool { return p(s) || q(s) }
}

// Not inverts a pattern.
func Not[S comparable](p Pattern[S]) Pattern[S] {
	return func(s S) bool { return !p(s) }
}

// TransPattern matches a (before, after) transition pair. Transition hooks
// only run when both sides are present, so implementations receive
// unwrapped values.
type TransPattern[S comparable] func(before, after S) bool

// Between builds a TransPattern from a pattern on each side. Guard logic
// spanning both sides can be written as a raw TransPattern closure.
func Between[S comparable](from, to Pattern[S]) TransPattern[S] {
	return func(before, after S) bool { return from(before) && to(after) }
}
