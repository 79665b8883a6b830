package session

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInputClosed is wrapped by IOError when input was already sent
	ErrInputClosed = errors.New("input already closed")
	// ErrNoProcess is wrapped by IOError when the process is not alive
	ErrNoProcess = errors.New("no live process")
)

// SpawnError reports that the process could not be started: the executable
// is missing or not executable, or the working directory is unusable.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// IOError reports a failed pipe operation. The session should be treated
// as dead once one is returned from a write.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
