package async

import "fmt"

// Status is the lifecycle position of the controller's current operation
type Status string

const (
	StatusIdle     Status = "IDLE"
	StatusPending  Status = "PENDING"
	StatusResolved Status = "RESOLVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) String() string { return string(s) }

// State is what consumers observe. Only the fields of the active status are set:
// Data for Resolved, Err for Rejected.
type State[T any] struct {
	Status Status
	Data   T
	Err    string
}

// CanTransition reports whether the controller may move from one status to another.
// Pending -> Pending happens when a new run supersedes one still in flight.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusIdle:
		return true
	case StatusPending:
		return from == StatusIdle || from == StatusPending || from == StatusResolved || from == StatusRejected
	case StatusResolved, StatusRejected:
		return from == StatusPending
	default:
		return false
	}
}

// ValidateTransition returns an error for transitions CanTransition refuses
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition: %s -> %s", from, to)
	}
	return nil
}

// action is the closed set of transitions; the unexported method keeps
// other packages from adding variants.
type action[T any] interface {
	target() Status
	apply() State[T]
}

type idleAction[T any] struct{}

func (idleAction[T]) target() Status  { return StatusIdle }
func (idleAction[T]) apply() State[T] { return State[T]{Status: StatusIdle} }

type pendingAction[T any] struct{}

func (pendingAction[T]) target() Status  { return StatusPending }
func (pendingAction[T]) apply() State[T] { return State[T]{Status: StatusPending} }

type resolvedAction[T any] struct{ data T }

func (a resolvedAction[T]) target() Status { return StatusResolved }
func (a resolvedAction[T]) apply() State[T] {
	return State[T]{Status: StatusResolved, Data: a.data}
}

type rejectedAction[T any] struct{ err string }

func (a rejectedAction[T]) target() Status { return StatusRejected }
func (a rejectedAction[T]) apply() State[T] {
	return State[T]{Status: StatusRejected, Err: a.err}
}

// reduce returns the next state, or the current one and false when the
// transition is not allowed.
func reduce[T any](current State[T], a action[T]) (State[T], bool) {
	if !CanTransition(current.Status, a.target()) {
		return current, false
	}
	return a.apply(), true
}
