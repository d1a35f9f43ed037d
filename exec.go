// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/runexec/internal/cmdline"
	"github.com/matt-FFFFFF/runexec/internal/commandinpath"
	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
	"github.com/matt-FFFFFF/runexec/internal/drain"
	"github.com/matt-FFFFFF/runexec/internal/lastline"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	lastLineDisplayLength = 120
)

var (
	// ErrInvalidCommand is returned when a command line holds no program to run.
	ErrInvalidCommand = errors.New("invalid command, no program to run")
	// ErrCouldNotStartProcess is returned when the process could not be launched.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when the output pipes could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrOpenNullDevice is returned when the null device could not be opened for OutputNone.
	ErrOpenNullDevice = errors.New("failed to open null device")
	// ErrWaitProcess is returned when waiting for the process failed.
	ErrWaitProcess = errors.New("failed to wait for process")
	// ErrContextDone is returned when the context was done before the process finished.
	ErrContextDone = errors.New("context done, process killed")
)

// progressInterval is how often a verbose Exec reports that the command is still running.
var progressInterval = 10 * time.Second

// Exec runs a single command line and waits for it to finish.
// The command line is split into a program and its arguments using double quotes to
// group words; no other shell syntax is interpreted. A nil opts uses DefaultOptions.
//
// The Result is nil when the command was invalid or could not be started.
// If ctx is done before the process finishes, the process is killed and both the
// Result and an error wrapping ErrContextDone are returned.
// A non-zero exit code is not an error, check Result.Status.
func Exec(ctx context.Context, command string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	args := cmdline.Split(command)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}

	logger := ctxlog.Logger(ctx).With("runnableType", "exec")

	if opts.Verbose {
		logger = logger.With("execContext", uuid.NewString())
		logger.InfoContext(ctx, "exec start",
			"options", opts,
			"command", command,
			"splits", args,
		)
	}

	res, err := run(ctx, logger, command, args, opts)

	if opts.Verbose && res != nil {
		logger.InfoContext(ctx, "exec result", "result", res)
	}

	return res, err
}

func run(ctx context.Context, logger *slog.Logger, command string, args []string, opts *Options) (*Result, error) {
	path, err := commandinpath.Find(args[0])
	if err != nil {
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.DebugContext(ctx, "command info",
		"path", path,
		"cwd", opts.WorkingDirectory,
		"args", args[1:],
	)

	out, err := openChildOutput(opts.Output)
	if err != nil {
		return nil, err
	}
	defer out.Close() //nolint:errcheck

	ps, err := os.StartProcess(path, args, &os.ProcAttr{
		Dir:   opts.WorkingDirectory,
		Env:   opts.environ(),
		Files: []*os.File{os.Stdin, out.stdoutW, out.stderrW},
	})

	// The child holds its own copies of the write ends.
	// Ours must be closed or the readers never see EOF.
	out.closeChildEnds()

	if err != nil {
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}
	defer ps.Release() //nolint:errcheck

	logger.DebugContext(ctx, "process started", "pid", ps.Pid)

	progress := lastline.New()
	done := make(chan struct{})
	wasKilled := make(chan error, 1)

	wg := &sync.WaitGroup{}
	wg.Add(1)

	go func() {
		defer wg.Done()
		watchProcess(ctx, logger, ps, progress, opts.Verbose, done, wasKilled)
	}()

	dst := &outputSink{progress: progress}

	var captured bytes.Buffer
	if opts.Output.captures() {
		dst.capture = &captured
	}

	if opts.Output.streams() {
		dst.console = opts.stdout()
	}

	if opts.Output != OutputNone {
		n, _ := drain.Streams(ctx, dst, out.stdoutR, out.stderrR)
		logger.DebugContext(ctx, "output drained", "bytes", n)

		if dst.consoleErr != nil {
			logger.WarnContext(ctx, "failed to write output to stdout", "error", dst.consoleErr)
		}
	}

	logger.DebugContext(ctx, "waiting for process to finish")

	state, psErr := ps.Wait()

	close(done)
	wg.Wait()

	if psErr != nil {
		return nil, errors.Join(ErrWaitProcess, psErr)
	}

	res := &Result{
		Command: command,
		Status:  newStatus(state.ExitCode()),
	}

	if opts.Output.captures() {
		res.Output = captured.String()
	}

	select {
	case killErr := <-wasKilled:
		// The kill was too late if the process had already exited on its own.
		if !state.Exited() {
			res.Status = newStatus(-1)
			res.Error = killErr

			return res, killErr
		}
	default:
	}

	logger.DebugContext(ctx, "process finished", "exitCode", res.Status.ExitCode)

	return res, nil
}

// watchProcess kills ps when ctx is done and, if verbose, periodically logs progress.
// It returns when done is closed.
func watchProcess(
	ctx context.Context,
	logger *slog.Logger,
	ps *os.Process,
	progress *lastline.Writer,
	verbose bool,
	done <-chan struct{},
	wasKilled chan<- error,
) {
	var tick <-chan time.Time

	if verbose {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		tick = ticker.C
	}

	start := time.Now()

	for {
		select {
		case <-tick:
			args := []any{
				"pid", ps.Pid,
				"elapsed", time.Since(start).Round(time.Millisecond).String(),
				"lastLine", progress.Last(lastLineDisplayLength),
			}

			logger.InfoContext(ctx, "command still running", append(args, processUsage(ctx, ps.Pid)...)...)

		case <-ctx.Done():
			logger.InfoContext(ctx, "context done, killing process", "pid", ps.Pid)
			killPs(ctx, logger, ps)

			wasKilled <- errors.Join(ErrContextDone, ctx.Err())

			return

		case <-done:
			return
		}
	}
}

// processUsage returns resource usage attributes for pid, omitting any that cannot be read.
func processUsage(ctx context.Context, pid int) []any {
	p, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec
	if err != nil {
		return nil
	}

	var attrs []any

	if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
		attrs = append(attrs, "rssBytes", mem.RSS)
	}

	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		attrs = append(attrs, "cpuPercent", cpu)
	}

	return attrs
}

func killPs(ctx context.Context, logger *slog.Logger, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			logger.DebugContext(ctx, "process already done", "pid", ps.Pid)
			return
		}

		logger.ErrorContext(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	logger.InfoContext(ctx, "process killed", "pid", ps.Pid)
}

// childOutput holds the files given to the child as stdout and stderr,
// and the read ends of the pipes behind them.
type childOutput struct {
	stdoutR, stderrR *os.File
	stdoutW, stderrW *os.File
}

// openChildOutput creates the child's output files for mode.
// With OutputNone both streams go to the null device and there is nothing to read.
func openChildOutput(mode OutputMode) (*childOutput, error) {
	if mode == OutputNone {
		null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, errors.Join(ErrOpenNullDevice, err)
		}

		return &childOutput{stdoutW: null, stderrW: null}, nil
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		rOut.Close() //nolint:errcheck
		wOut.Close() //nolint:errcheck

		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	return &childOutput{
		stdoutR: rOut,
		stderrR: rErr,
		stdoutW: wOut,
		stderrW: wErr,
	}, nil
}

func (c *childOutput) closeChildEnds() {
	if c.stdoutW != nil {
		c.stdoutW.Close() //nolint:errcheck
	}

	if c.stderrW != nil && c.stderrW != c.stdoutW {
		c.stderrW.Close() //nolint:errcheck
	}

	c.stdoutW, c.stderrW = nil, nil
}

// Close releases every file still held.
func (c *childOutput) Close() error {
	c.closeChildEnds()

	var errs error

	for _, f := range []*os.File{c.stdoutR, c.stderrR} {
		if f == nil {
			continue
		}

		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = errors.Join(errs, err)
		}
	}

	c.stdoutR, c.stderrR = nil, nil

	return errs
}

// outputSink fans drained output out to the capture buffer, the progress tracker
// and the console. It never fails: a console write error is kept and the
// console is skipped from then on so that capture stays complete.
type outputSink struct {
	capture    *bytes.Buffer
	progress   io.Writer
	console    io.Writer
	consoleErr error
}

func (s *outputSink) Write(p []byte) (int, error) {
	if s.capture != nil {
		s.capture.Write(p) //nolint:errcheck
	}

	s.progress.Write(p) //nolint:errcheck

	if s.console != nil && s.consoleErr == nil {
		if _, err := s.console.Write(p); err != nil {
			s.consoleErr = err
		}
	}

	return len(p), nil
}
