package runner

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned by check and match when no candidates were given.
var ErrNoInput = errors.New("no input: pass URLs as arguments, use --input, or pipe them on stdin")

// PersistenceError reports a run log that could not be written. The run
// itself is complete; callers report it and exit normally.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving run log to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
