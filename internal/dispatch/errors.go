package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChainTooDeep is returned when chained tasks exceed Dispatcher.MaxChain.
var ErrChainTooDeep = errors.New("task chain exceeded the configured limit")

// ResolutionError reports command words that match no task.
type ResolutionError struct {
	Input       string
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("Error: %s is not a valid task.", e.Input)
	if len(e.Suggestions) > 0 {
		msg += " Did you mean: " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

// ModuleError wraps a failure raised by a task module.
type ModuleError struct {
	Task string
	Set  string
	Err  error
}

func (e *ModuleError) Error() string {
	return e.Err.Error()
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// ExitCode maps a dispatch outcome to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
