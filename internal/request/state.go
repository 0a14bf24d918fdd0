// Package request models the lifecycle of a single logical network
// operation as a tagged union: Empty, Loading, Success or Failure.
// Consumers derive loading indicators from the phase alone; there is no
// separate "is loading" flag to drift out of sync with the last result.
package request

// Phase identifies which variant a State currently holds.
type Phase int

const (
	Empty Phase = iota
	Loading
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// State is the envelope around an in-flight or completed request.
// The zero value is Empty. Values are immutable; a new request replaces
// the whole envelope rather than mutating it.
type State[T any] struct {
	phase Phase
	value T
	err   error
}

func NewEmpty[T any]() State[T] {
	return State[T]{phase: Empty}
}

func NewLoading[T any]() State[T] {
	return State[T]{phase: Loading}
}

func NewSuccess[T any](value T) State[T] {
	return State[T]{phase: Success, value: value}
}

func NewFailure[T any](err error) State[T] {
	return State[T]{phase: Failure, err: err}
}

func (s State[T]) Phase() Phase { return s.phase }

func (s State[T]) IsLoading() bool { return s.phase == Loading }

// Value returns the payload and true when the state is Success.
func (s State[T]) Value() (T, bool) {
	if s.phase != Success {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the cause of a Failure state, nil otherwise.
func (s State[T]) Err() error {
	if s.phase != Failure {
		return nil
	}
	return s.err
}
