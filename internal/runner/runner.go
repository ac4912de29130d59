// Package runner spawns toolkit subprocesses with fixed timeouts and
// graceful termination.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Sentinel errors distinguishing why a run was cut short.
var (
	ErrTimeout     = errors.New("subprocess timed out")
	ErrInterrupted = errors.New("subprocess interrupted")
)

// gracePeriod is how long a process group gets between SIGTERM and
// SIGKILL when a run is cancelled.
const gracePeriod = 3 * time.Second

// Invocation describes one toolkit subcommand run: the venv interpreter,
// the python module to execute, and its arguments.
type Invocation struct {
	Python  string
	Module  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// CommandLine returns the full argument vector, interpreter first.
func (inv *Invocation) CommandLine() []string {
	argv := []string{inv.Python, "-m", inv.Module}
	return append(argv, inv.Args...)
}

// Runner executes invocations with inherited stdio so training and
// generation output streams live to the terminal.
type Runner struct {
	Log *slog.Logger
}

// New creates a Runner logging through the given logger.
func New(log *slog.Logger) *Runner {
	return &Runner{Log: log}
}

// Run executes the invocation and returns the child's exit code.
//
// A non-zero child exit is not an error here; the caller decides how to
// relay it. The error return is reserved for the run being cut short:
// ErrTimeout when the invocation's timeout elapsed, ErrInterrupted when
// ctx was cancelled, or a start failure. In the cut-short cases the
// process group gets SIGTERM, then SIGKILL after a short grace period.
func (r *Runner) Run(ctx context.Context, inv *Invocation) (int, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	// Not CommandContext - cancellation is handled manually so the child
	// gets SIGTERM before SIGKILL.
	cmd := exec.Command(inv.Python, append([]string{"-m", inv.Module}, inv.Args...)...)
	cmd.Dir = inv.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	// Own process group so the entire child tree can be terminated.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	r.Log.Debug("starting subprocess",
		"module", inv.Module,
		"dir", inv.Dir,
		"timeout", inv.Timeout,
		"argv", inv.CommandLine())

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("starting %s: %w", inv.Module, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(gracePeriod):
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
			<-done
		}

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.Log.Warn("subprocess timed out", "module", inv.Module, "timeout", inv.Timeout)
			return -1, ErrTimeout
		}
		r.Log.Debug("subprocess interrupted", "module", inv.Module)
		return -1, ErrInterrupted

	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				r.Log.Debug("subprocess exited", "module", inv.Module, "code", exitErr.ExitCode())
				return exitErr.ExitCode(), nil
			}
			return -1, err
		}
		r.Log.Debug("subprocess exited", "module", inv.Module, "code", 0)
		return 0, nil
	}
}
