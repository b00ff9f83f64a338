package errors

import "fmt"

// Exit codes returned by commands.
const (
	ExitCodeInvalidArgs = 1
	ExitCodeDiscovery   = 2
	ExitCodeReport      = 3
)

// CommandError represents a fatal command failure and the exit code the process should return.
type CommandError struct {
	ExitCode    int
	CommonError string
	Args        interface{}
	cause       error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap exposes the underlying error.
func (e *CommandError) Unwrap() error {
	return e.cause
}

// NewCommandError creates a new CommandError instance, encapsulating args and the error message.
func NewCommandError(args interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Args:        args,
		cause:       err,
	}
}

// Errorf is a shorthand for NewCommandError(args, fmt.Errorf(format, a...), code).
func Errorf(args interface{}, code int, format string, a ...interface{}) *CommandError {
	return NewCommandError(args, fmt.Errorf(format, a...), code)
}
