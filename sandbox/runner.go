package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultOutputCap is the per-stream capture limit in bytes.
const DefaultOutputCap = 20000

// DefaultTimeout bounds an execution when the caller supplies none.
const DefaultTimeout = 4 * time.Second

// Runner executes Python text in a freshly spawned interpreter process.
// Each call owns its own child process and temp directory; Runners hold no
// cross-call state and are safe for concurrent use.
type Runner struct {
	// Interpreter is the interpreter binary, e.g. "python3".
	Interpreter string
	// Suffix is the filename extension of the materialized source file.
	// Defaults to ".py".
	Suffix string
	// OutputCap limits each captured stream, in bytes. Defaults to
	// DefaultOutputCap.
	OutputCap int
	// Timeout is the default wall-clock bound. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Logger receives cleanup warnings. Defaults to a discard logger.
	Logger *slog.Logger
}

// RunResult is the observable outcome of one execution. Stdout and Stderr
// are capped; on timeout they hold whatever the process wrote before it
// was killed.
type RunResult struct {
	// ID correlates this run with its log entries.
	ID       string
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 when the process was killed before a clean exit
	TimedOut bool
	// Truncated reports that at least one stream hit the output cap.
	Truncated bool
	Duration  time.Duration
}

// Run materializes code to a temp file and executes it under a wall-clock
// timeout. A non-zero exit or runtime fault is reported through the result,
// not as an error; the returned error is reserved for host-level failures
// (inability to spawn the interpreter). The temp artifact is removed on
// every exit path.
func (r *Runner) Run(ctx context.Context, code string, timeout time.Duration) (*RunResult, error) {
	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	capBytes := r.OutputCap
	if capBytes <= 0 {
		capBytes = DefaultOutputCap
	}
	suffix := r.Suffix
	if suffix == "" {
		suffix = ".py"
	}
	log := r.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	id := uuid.New().String()

	dir, err := os.MkdirTemp("", "twi-run-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		// Cleanup failure never masks the execution outcome.
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.Warn("removing run artifacts", "run", id, "dir", dir, "error", rmErr)
		}
	}()

	srcFile := filepath.Join(dir, "program"+suffix)
	if err := os.WriteFile(srcFile, []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("writing source file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := &capWriter{cap: capBytes}
	stderr := &capWriter{cap: capBytes}

	cmd := exec.CommandContext(runCtx, r.Interpreter, srcFile)
	cmd.Dir = dir
	cmd.Stdin = nil // no inherited interactive input
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = minimalEnv(dir)
	// Force Wait to return shortly after the kill even if a grandchild
	// still holds the output pipes.
	cmd.WaitDelay = 250 * time.Millisecond

	start := time.Now()
	runErr := cmd.Run()
	res := &RunResult{
		ID:        id,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: stdout.truncated || stderr.truncated,
		Duration:  time.Since(start),
	}

	if killedByDeadline(runErr, runCtx.Err()) {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if errors.Is(runErr, exec.ErrWaitDelay) {
			// The process exited but a grandchild held the pipes past
			// the grace period; the exit status is still valid.
			res.ExitCode = cmd.ProcessState.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("spawning interpreter %q: %w", r.Interpreter, runErr)
	}
	res.ExitCode = 0
	return res, nil
}

// killedByDeadline attributes a run error to the wall-clock limit. A
// process that exited cleanly just as the deadline fired is a completed
// run, not a timeout.
func killedByDeadline(runErr, ctxErr error) bool {
	return runErr != nil && errors.Is(ctxErr, context.DeadlineExceeded)
}

// minimalEnv builds the child's sanitized environment: just enough for an
// interpreter to start, with HOME pointed at the scratch dir.
func minimalEnv(dir string) []string {
	env := []string{
		"HOME=" + dir,
		"LANG=C.UTF-8",
		"PYTHONIOENCODING=utf-8",
	}
	if path := os.Getenv("PATH"); path != "" {
		env = append(env, "PATH="+path)
	}
	return env
}

// capWriter buffers writes up to cap bytes, then drops the remainder.
// The cut is deterministic: a write straddling the cap keeps its prefix.
// Write never returns an error so the child is not killed by a full pipe.
type capWriter struct {
	buf       bytes.Buffer
	cap       int
	truncated bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	if remain := w.cap - w.buf.Len(); remain > 0 {
		if len(p) > remain {
			w.buf.Write(p[:remain])
			w.truncated = true
		} else {
			w.buf.Write(p)
		}
	} else if len(p) > 0 {
		w.truncated = true
	}
	return len(p), nil
}

func (w *capWriter) Bytes() []byte { return w.buf.Bytes() }
