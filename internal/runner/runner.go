// Package runner executes the shell under test with a timeout and
// captures its combined output to a per-run log file.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Runner executes shell invocations under a timeout.
type Runner struct {
	Timeout   time.Duration
	MaxOutput int // log file cap in bytes; excess output is discarded
}

// Run executes argv with the configured timeout. The first element is
// the shell binary (resolved via PATH), the rest are its arguments.
// Combined stdout+stderr is written to <logPrefix>-out; the file is
// flushed and closed before Run returns, so a classifier may read it
// immediately. A non-spawnable command is a hard error, not a result.
func (r *Runner) Run(ctx context.Context, argv []string, logPrefix string) (*RunResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}
	if logPrefix == "" {
		return nil, fmt.Errorf("empty log prefix")
	}

	logPath := logPrefix + "-out"
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("creating log %s: %w", logPath, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	// Stdout and Stderr share one writer, so the process inherits a
	// single pipe and lines interleave in write order.
	lw := &limitWriter{w: logFile, limit: r.MaxOutput}
	cmd.Stdout = lw
	cmd.Stderr = lw

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Seconds()

	if closeErr := logFile.Close(); closeErr != nil {
		return nil, fmt.Errorf("closing log %s: %w", logPath, closeErr)
	}

	res := &RunResult{
		RunID:          uuid.New().String(),
		ElapsedSeconds: elapsed,
		LogPath:        logPath,
		Truncated:      lw.truncated,
	}

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		// Parent context canceled (e.g. interrupt): the run was
		// interrupted, not classified.
		return nil, ctx.Err()

	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Status = TimedOut
		res.Msg = fmt.Sprintf("timed out (%d seconds)", int(r.Timeout.Seconds()))

	case runErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// Binary missing, not executable, or similar spawn failure.
			return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Status = Crashed
			res.Msg = fmt.Sprintf("CRASHED (signal %d)", int(ws.Signal()))
		} else {
			res.Status = Abnormal
			res.ExitCode = exitErr.ExitCode()
			res.Msg = fmt.Sprintf("exited with code %d", exitErr.ExitCode())
		}

	default:
		res.Status = Normal
		res.Msg = "exited normally"
	}

	return res, nil
}

// limitWriter passes through up to limit bytes, then silently discards
// the rest. A limit of 0 means unlimited.
type limitWriter struct {
	w         *os.File
	limit     int
	written   int
	truncated bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		n, err := w.w.Write(p)
		w.written += n
		return n, err
	}
	remaining := w.limit - w.written
	if remaining <= 0 {
		w.truncated = true
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors upstream.
		w.truncated = true
		n, err := w.w.Write(p[:remaining])
		w.written += n
		if err != nil {
			return n, err
		}
		return len(p), nil
	}
	n, err := w.w.Write(p)
	w.written += n
	return n, err
}
