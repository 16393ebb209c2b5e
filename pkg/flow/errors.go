package flow

import (
	"errors"
	"fmt"
)

// ErrCannotProcess is returned when an event matched no trigger and no
// in-flight flow. For user-scoped dispatches the manager clears the session
// before surfacing it, so the subject is never stuck.
var ErrCannotProcess = errors.New("event cannot be processed")

// ErrNoStepToReturnTo is returned when a go-back or reload command finds no
// blocking step to land on within the current loop iteration.
var ErrNoStepToReturnTo = errors.New("no blocking step to return to")

// CorruptStateError reports a persisted token that does not decode to a known
// position. This is fatal for the dispatch: defaulting to a fresh session
// would mask the bug that produced the token.
type CorruptStateError struct {
	Token string
	Flow  string // owning flow, when identified
	Step  string // unknown step name, when that is the problem
	Err   error
}

func (e *CorruptStateError) Error() string {
	switch {
	case e.Step != "":
		return fmt.Sprintf("corrupt session state: flow %q has no step %q", e.Flow, e.Step)
	case e.Flow != "":
		return fmt.Sprintf("corrupt session state: no flow registered for %q", e.Flow)
	default:
		return fmt.Sprintf("corrupt session state: %v", e.Err)
	}
}

func (e *CorruptStateError) Unwrap() error { return e.Err }
