package harvest

import (
	"errors"
	"fmt"
)

// ErrSameDeadline is returned by Merge when both ids are equal.
var ErrSameDeadline = errors.New("cannot merge a deadline with itself")

// PersistenceError reports a store failure for one candidate. The run
// continues with the next candidate.
type PersistenceError struct {
	Op    string
	Title string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Title, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
