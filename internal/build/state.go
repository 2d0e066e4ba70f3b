package build

import (
	"errors"
	"fmt"

	"github.com/AndreCostaaa/ejlv-builder/internal/board"
	"github.com/AndreCostaaa/ejlv-builder/internal/idf"
)

// State is a node of the build state machine.
type State int

const (
	StateInitialBuild State = iota
	StateReconfiguring
	StateRebuilding
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialBuild:
		return "initial-build"
	case StateReconfiguring:
		return "reconfiguring"
	case StateRebuilding:
		return "rebuilding"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further step runs from s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

var (
	ErrReconfigureFailed = errors.New("reconfigure failed")
	ErrRebuildFailed     = errors.New("rebuild failed")
)

// StepError reports a fallback step that ran and exited unsuccessfully.
type StepError struct {
	State   State
	Outcome idf.Outcome
	Err     error // ErrReconfigureFailed or ErrRebuildFailed
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%v: idf.py %s exited with code %d", e.Err, e.Outcome.Action, e.Outcome.ExitCode)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// action returns the idf.py action run in state s.
func action(s State, b board.Board) idf.Action {
	if s == StateReconfiguring {
		return idf.SetTarget(b.Name)
	}
	return idf.Build
}

// transition returns the state following s given the step outcome. Every
// edge moves forward, so a run visits each step at most once.
func transition(s State, out idf.Outcome) (State, error) {
	switch s {
	case StateInitialBuild:
		if out.Success() {
			return StateSucceeded, nil
		}
		return StateReconfiguring, nil
	case StateReconfiguring:
		if out.Success() {
			return StateRebuilding, nil
		}
		return StateFailed, &StepError{State: s, Outcome: out, Err: ErrReconfigureFailed}
	case StateRebuilding:
		if out.Success() {
			return StateSucceeded, nil
		}
		return StateFailed, &StepError{State: s, Outcome: out, Err: ErrRebuildFailed}
	}
	return StateFailed, fmt.Errorf("no transition from %s", s)
}
