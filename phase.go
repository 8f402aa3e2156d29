package strata

// Phase identifies a step in the per-state resolve pipeline. Within one
// tick each state runs Compute, Trigger, and (when flushing) the flush
// phases Exit, Trans, Enter, followed by Apply after every state has
// resolved.
type Phase int32

const (
	// PhaseCompute derives the pending value from dependencies.
	PhaseCompute Phase = iota

	// PhaseTrigger decides whether the state flushes this tick.
	PhaseTrigger

	// PhaseFlush covers hooks keyed on any flush, independent of side.
	PhaseFlush

	// PhaseExit runs exit hooks against the pre-commit current value.
	PhaseExit

	// PhaseTrans runs transition hooks when both sides are present.
	PhaseTrans

	// PhaseEnter runs enter hooks against the pending value.
	PhaseEnter

	// PhaseApply commits the pending value and publishes flush events.
	PhaseApply
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCompute:
		return "compute"
	case PhaseTrigger:
		return "trigger"
	case PhaseFlush:
		return "flush"
	case PhaseExit:
		return "exit"
	case PhaseTrans:
		return "trans"
	case PhaseEnter:
		return "enter"
	case PhaseApply:
		return "apply"
	default:
		return "unknown"
	}
}
