package ast

import (
	"errors"
	"fmt"
)

// ErrNotRemovable is wrapped by the PreconditionError returned when a walk
// removes a child its owner cannot do without.
var ErrNotRemovable = errors.New("node is not removable")

// PreconditionError reports an edit that would leave a tree invalid, such
// as removing the only column of a SELECT list.
type PreconditionError struct {
	Op     string // the attempted edit
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func notRemovable(owner Node, what string) error {
	return &PreconditionError{
		Op:     "remove",
		Reason: fmt.Sprintf("%s of %s is required", what, owner.Kind()),
		Err:    ErrNotRemovable,
	}
}
