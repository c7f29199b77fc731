package engine

import (
	"errors"
	"strings"
)

var (
	// ErrNoSuchHook signals that a module does not define the invoked
	// lifecycle function. It is a distinct non-error condition for callers.
	ErrNoSuchHook = errors.New("hook not defined")

	// ErrModuleNotFound indicates the script name did not resolve against
	// the home directory or any module search path entry.
	ErrModuleNotFound = errors.New("module not found")

	// ErrEngineConstruction wraps any failure while building the run
	// environment, including bootstrap script failures.
	ErrEngineConstruction = errors.New("engine construction failed")
)

// ScriptError is a failure raised by script compilation or execution. It
// carries the syntax errors collected during the failing operation and the
// script-level trace, in the shape the error reporter prints them.
type ScriptError struct {
	Message      string
	SyntaxErrors []string
	ScriptTrace  string
	err          error
}

func (e *ScriptError) Error() string {
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.err
}

// newScriptError normalizes a runtime failure. The first line of the
// underlying message is the headline; for compile failures the remaining
// lines are the collected syntax errors, for runtime failures they form the
// script-level trace.
func newScriptError(err error, compile bool) *ScriptError {
	lines := strings.Split(err.Error(), "\n")
	se := &ScriptError{Message: lines[0], err: err}

	var rest []string
	for _, line := range lines[1:] {
		if trimmed := strings.TrimRight(line, " \t"); trimmed != "" {
			rest = append(rest, trimmed)
		}
	}
	if compile {
		se.SyntaxErrors = rest
	} else {
		se.ScriptTrace = strings.Join(rest, "\n")
	}
	return se
}
