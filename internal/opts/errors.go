package opts

import (
	"errors"
	"fmt"
)

// Error categories for option scanning. Concrete error types below match
// these with errors.Is so callers can branch without string comparison.
var (
	ErrUnknownOption = errors.New("unknown option")
	ErrMissingValue  = errors.New("option requires a value")
)

// UnknownOptionError records the exact token the user typed.
type UnknownOptionError struct {
	Token string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option: %s", e.Token)
}

func (e *UnknownOptionError) Is(target error) bool {
	return target == ErrUnknownOption
}

// MissingValueError identifies a value-taking option that was given without
// a value, and the placeholder describing what it expected.
type MissingValueError struct {
	Option  string
	ArgName string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%s option requires a value (%s)", e.Option, e.ArgName)
}

func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingValue
}
