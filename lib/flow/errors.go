package flow

import (
	"errors"
	"fmt"
)

// ErrAmbiguousState is returned by existence checkers when an object can neither be treated as present nor as missing,
// e.g. a table that exists but is empty or a prior run that failed halfway through.
var ErrAmbiguousState = errors.New("existence state is ambiguous")

// ConfigError is returned when the inflow configuration cannot be turned into a plan.
// It is never retried.
type ConfigError struct {
	Path string
	Err  error
}

func NewConfigError(path string, format string, args ...any) ConfigError {
	return ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
}

func (c ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration at %q: %v", c.Path, c.Err)
}

func (c ConfigError) Unwrap() error {
	return c.Err
}

// ExistenceCheckError is returned when the destination state of a writenx object could not be determined.
type ExistenceCheckError struct {
	Path   string
	Object ObjectPath
	Err    error
}

func (e ExistenceCheckError) Error() string {
	return fmt.Sprintf("failed to check whether %q exists (node %q): %v", e.Object.String(), e.Path, e.Err)
}

func (e ExistenceCheckError) Unwrap() error {
	return e.Err
}

// PlanningInvariantError is a programming error, the planner reached a state that should not be possible.
type PlanningInvariantError struct {
	Path    string
	Message string
}

func (p PlanningInvariantError) Error() string {
	return fmt.Sprintf("planning invariant violated at %q: %s", p.Path, p.Message)
}

func IsConfigError(err error) bool {
	var configErr ConfigError
	return errors.As(err, &configErr)
}

func IsExistenceCheckError(err error) bool {
	var checkErr ExistenceCheckError
	return errors.As(err, &checkErr)
}
