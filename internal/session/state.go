// Package session tracks the lifecycle of analysis jobs: creation, dispatch,
// concurrent execution, terminal settlement, and cooperative cancellation.
package session

import "github.com/marisol/atelier/internal/analysis"

// State is the lifecycle state of an analysis job.
type State string

// Job lifecycle states. A job is created idle, moves to dispatched when its
// tasks are handed to the executor, and settles exactly once; terminal states
// are write-once and never re-entered or overwritten.
const (
	StateIdle       State = "idle"
	StateDispatched State = "dispatched"
	StateRunning    State = "running"
	StateComplete   State = "complete"
	StatePartial    State = "partial"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether s is a terminal state.
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StatePartial, StateFailed, StateCancelled:
		return true
	}
	return false
}

// stateForVerdict maps a pipeline verdict to the job's terminal state.
func stateForVerdict(v analysis.Verdict) State {
	switch v {
	case analysis.VerdictComplete:
		return StateComplete
	case analysis.VerdictPartial:
		return StatePartial
	default:
		return StateFailed
	}
}
