package monitor

import "time"

// State is the monitor loop's debounce state.
type State int32

const (
	// StateNormal polls at the check interval.
	StateNormal State = iota
	// StateDebouncing waits out the cool-down after a delivered alert.
	StateDebouncing
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDebouncing:
		return "debouncing"
	default:
		return "unknown"
	}
}

// Result is the outcome of a cycle's notification attempt.
type Result int

const (
	ResultNone Result = iota // no alert was attempted
	ResultDelivered
	ResultFailed
)

// Action is the side effect the loop applies after a transition.
type Action int

const (
	ActionNone Action = iota
	ActionResetTracker
)

// SleepFor returns how long the loop waits before the next check.
func SleepFor(s State, checkInterval, debounce time.Duration) time.Duration {
	if s == StateDebouncing {
		return debounce
	}
	return checkInterval
}

// Wake returns the state at the start of a check. The debounce window is
// single-shot: it ends as soon as the loop wakes from it.
func Wake(State) State {
	return StateNormal
}

// IsStale reports whether elapsed exceeds the heartbeat timeout.
func IsStale(elapsed, timeout time.Duration) bool {
	return elapsed > timeout
}

// Transition computes the state after a check. A delivered alert enters
// debounce and resets the tracker; a failed one leaves everything as is so
// the next normal-cadence check retries.
func Transition(s State, stale bool, r Result) (State, Action) {
	if !stale {
		return StateNormal, ActionNone
	}
	switch r {
	case ResultDelivered:
		return StateDebouncing, ActionResetTracker
	default:
		return StateNormal, ActionNone
	}
}
