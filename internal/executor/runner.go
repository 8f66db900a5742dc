// Package executor runs external tools such as the cordova CLI on behalf
// of task modules.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// ErrToolNotFound is returned when the tool is not on PATH.
var ErrToolNotFound = errors.New("executable not found in PATH")

// ExecutionResult describes a finished command.
type ExecutionResult struct {
	Command  string
	ExitCode int
	Duration time.Duration
}

// Runner runs one external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*ExecutionResult, error)
}

// Executor streams a command's output to its writers.
type Executor struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	timeout  time.Duration
	lookPath func(string) (string, error)
}

var _ Runner = (*Executor)(nil)

// New creates an executor attached to the process's standard streams.
func New() *Executor {
	return &Executor{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		timeout:  constants.DefaultCommandTimeout,
		lookPath: exec.LookPath,
	}
}

// SetTimeout sets the command execution timeout
func (e *Executor) SetTimeout(timeout time.Duration) {
	e.timeout = timeout
}

// Run executes name with args. A non-zero exit is reported as an error
// that carries the exit code in the result.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (*ExecutionResult, error) {
	command := strings.TrimSpace(name + " " + strings.Join(args, " "))
	result := &ExecutionResult{Command: command, ExitCode: -1}

	lookPath := e.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return result, fmt.Errorf("%s: %w", name, ErrToolNotFound)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = e.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	logging.Debug("executing command", logging.Fields{"command": command, "dir": e.Dir})
	start := time.Now()
	err = cmd.Run()
	result.Duration = time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("%s: timed out after %s", command, e.timeout)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%s exited with status %d", command, result.ExitCode)
	default:
		return result, fmt.Errorf("failed to run %s: %w", command, err)
	}

	logging.Debug("command finished", logging.Fields{"command": command, "duration_ms": result.Duration.Milliseconds()})
	return result, nil
}
