package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrHelpRequested and ErrVersionRequested are raised by the option
	// applier; the top-level driver turns them into stdout output and a
	// zero exit, bypassing all remaining parsing and execution.
	ErrHelpRequested    = errors.New("help requested")
	ErrVersionRequested = errors.New("version requested")

	// ErrDaemonScriptRequired is raised when the daemon entry point runs
	// without a positional script argument.
	ErrDaemonScriptRequired = errors.New("daemon interface requires a script argument")
)

// RangeError reports an optimization level outside the inclusive [-1, 9]
// bounds, or one that did not parse as a base-10 integer.
type RangeError struct {
	Option string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s value must be a number between -1 and 9", e.Option)
}
