package tool

import "fmt"

// ErrToolNotFound is returned when a call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolExecution wraps errors from argument validation or handler
// execution. Its message is the observation recorded for a failed call.
type ErrToolExecution struct {
	Name string
	Err  error
}

// Error returns "Execution error in <name>: <cause>".
func (e *ErrToolExecution) Error() string {
	return fmt.Sprintf("Execution error in %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ErrToolExecution) Unwrap() error {
	return e.Err
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate tool name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ErrInvalidArguments reports arguments rejected by the tool's schema.
type ErrInvalidArguments struct {
	Err error
}

// Error returns a formatted validation message.
func (e *ErrInvalidArguments) Error() string {
	return fmt.Sprintf("invalid arguments: %v", e.Err)
}

// Unwrap returns the underlying validation error.
func (e *ErrInvalidArguments) Unwrap() error {
	return e.Err
}
