package migrations

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidChain is returned by NewChain when units do not form a valid DAG.
	ErrInvalidChain = errors.New("invalid revision chain")

	ErrUnknownRevision    = errors.New("unknown revision")
	ErrAlreadyApplied     = errors.New("revision already applied")
	ErrPredecessorMissing = errors.New("down revision not applied")
	ErrNotApplied         = errors.New("revision not applied")
	ErrDependentApplied   = errors.New("dependent revision still applied")
)

// StateError reports an operation refused because of the recorded
// migration state. Err is one of the sentinel errors above.
type StateError struct {
	Op       string
	Revision string
	Related  string
	Err      error
}

func (e *StateError) Error() string {
	if e.Related != "" {
		return fmt.Sprintf("migrate %s %s: %v: %s", e.Op, e.Revision, e.Err, e.Related)
	}
	return fmt.Sprintf("migrate %s %s: %v", e.Op, e.Revision, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// IsStateError reports whether err is a refusal caused by migration state.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
