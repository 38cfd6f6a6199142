package react

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProgram is returned by New for unusable arguments.
var ErrInvalidProgram = errors.New("react: invalid program")

// MissingInputsError is returned before any model call when required
// inputs are absent.
type MissingInputsError struct {
	Missing []string
}

func (e *MissingInputsError) Error() string {
	return fmt.Sprintf("react: missing required inputs: %s", strings.Join(e.Missing, ", "))
}
