// Package p4 wraps the Perforce command line client used by p4status.
package p4

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/chmouel/p4status/internal/models"
)

// DefaultBinary is the client executable looked up in PATH.
const DefaultBinary = "p4"

// LookupPath is used to find executables in PATH. It's exposed as a package variable
// so tests can mock it and avoid depending on system binaries being installed.
var LookupPath = exec.LookPath

// ErrNotFound is returned when the p4 executable cannot be located.
var ErrNotFound = errors.New("p4 not found or not accessible")

// Output is the captured result of a single p4 invocation.
type Output struct {
	Command    string // Rendered command line, used in error reports
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Runner executes p4 commands. A non-zero exit status is reported through
// Output; the error is reserved for invocations that could not complete.
type Runner interface {
	Run(ctx context.Context, args []string) (Output, error)
}

// ExecRunner runs the p4 binary as a child process.
type ExecRunner struct {
	path       string
	globalArgs []string
	logger     *slog.Logger
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner builds a runner for the given binary. globalArgs are placed
// before every command, e.g. []string{"-p", "ssl:perforce:1666"}.
func NewExecRunner(path string, globalArgs []string, logger *slog.Logger) *ExecRunner {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultBinary
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecRunner{
		path:       path,
		globalArgs: append([]string{}, globalArgs...),
		logger:     logger,
	}
}

// Path returns the configured executable.
func (r *ExecRunner) Path() string {
	return r.path
}

// Available reports whether the executable can be found.
func (r *ExecRunner) Available() error {
	if _, err := LookupPath(r.path); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, r.path)
	}
	return nil
}

// CommandLine renders the full command line for args.
func (r *ExecRunner) CommandLine(args []string) string {
	parts := make([]string, 0, 1+len(r.globalArgs)+len(args))
	parts = append(parts, r.path)
	parts = append(parts, r.globalArgs...)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

// Run executes p4 with args and captures stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, args []string) (Output, error) {
	out := Output{Command: r.CommandLine(args)}
	r.logger.Debug("run", "cmd", out.Command)

	full := make([]string, 0, len(r.globalArgs)+len(args))
	full = append(full, r.globalArgs...)
	full = append(full, args...)

	// #nosec G204 -- the binary comes from local config and arguments are built internally
	cmd := exec.CommandContext(ctx, r.path, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	if err == nil {
		r.logger.Debug("ok", "cmd", out.Command)
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		r.logger.Debug("error", "cmd", out.Command, "err", ctxErr)
		return out, fmt.Errorf("%s: %w", out.Command, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitStatus = exitErr.ExitCode()
		r.logger.Debug("error", "cmd", out.Command, "exit", out.ExitStatus, "stderr", strings.TrimSpace(out.Stderr))
		return out, nil
	}

	r.logger.Debug("error", "cmd", out.Command, "err", err)
	if errors.Is(err, exec.ErrNotFound) {
		return out, fmt.Errorf("%w: %s", ErrNotFound, r.path)
	}
	return out, fmt.Errorf("%s: %w", out.Command, err)
}

// CommandError describes a p4 command that failed.
type CommandError struct {
	Status  int
	Stderr  string
	Command string
	Err     error // Set when the process did not run to completion
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit %d: %s", e.Command, e.Status, e.Stderr)
	}
	return fmt.Sprintf("%s: exit %d", e.Command, e.Status)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// StepError converts the failure into report data.
func (e *CommandError) StepError() models.StepError {
	return models.StepError{
		Status:  e.Status,
		Stderr:  e.Stderr,
		Command: e.Command,
	}
}

// run executes args and turns every failure mode into a *CommandError.
func run(ctx context.Context, runner Runner, args []string) (string, error) {
	out, err := runner.Run(ctx, args)
	command := out.Command
	if command == "" {
		command = DefaultBinary + " " + strings.Join(args, " ")
	}
	if err != nil {
		return "", &CommandError{
			Status:  models.StatusNoExit,
			Stderr:  err.Error(),
			Command: command,
			Err:     err,
		}
	}
	if out.ExitStatus != 0 {
		return "", &CommandError{
			Status:  out.ExitStatus,
			Stderr:  strings.TrimSpace(out.Stderr),
			Command: command,
		}
	}
	return out.Stdout, nil
}
