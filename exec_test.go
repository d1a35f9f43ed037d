// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/runexec/internal/commandinpath"
	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func testContext() context.Context {
	return ctxlog.New(context.Background(), ctxlog.DefaultLogger)
}

// bufferedLogContext returns a context whose logger writes JSON records at level to buf.
func bufferedLogContext(buf *bytes.Buffer, level slog.Level) context.Context {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
	return ctxlog.New(context.Background(), logger)
}

func TestExec_Capture(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	stdout := &bytes.Buffer{}
	res, err := Exec(testContext(), `/bin/sh -c "printf 'hello world'"`, &Options{
		Output: OutputCapture,
		Stdout: stdout,
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Status.ExitCode)
	assert.True(t, res.Status.Succeeded)
	assert.Equal(t, "hello world", res.Output)
	assert.Empty(t, stdout.String(), "capture must not stream")
	assert.NoError(t, res.Error)
}

func TestExec_CaptureIncludesStderr(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), `/bin/sh -c "printf out; printf err >&2"`, &Options{
		Output: OutputCapture,
	})

	require.NoError(t, err)
	assert.Len(t, res.Output, len("out")+len("err"))
	assert.Contains(t, res.Output, "out")
	assert.Contains(t, res.Output, "err")
}

func TestExec_CaptureMultiByte(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), `/bin/sh -c "printf 'héllo wörld ✓'"`, &Options{
		Output: OutputCapture,
	})

	require.NoError(t, err)
	assert.Equal(t, "héllo wörld ✓", res.Output)
}

func TestExec_CaptureLargeOutput(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), `/bin/sh -c "head -c 1000000 /dev/zero"`, &Options{
		Output: OutputCapture,
	})

	require.NoError(t, err)
	assert.True(t, res.Status.Succeeded)
	assert.Len(t, res.Output, 1000000)
}

func TestExec_StdOut(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	stdout := &bytes.Buffer{}
	res, err := Exec(testContext(), `/bin/sh -c "echo one; echo two >&2"`, &Options{
		Output: OutputStdOut,
		Stdout: stdout,
	})

	require.NoError(t, err)
	assert.True(t, res.Status.Succeeded)
	assert.Empty(t, res.Output, "stdout mode must not capture")
	assert.Contains(t, stdout.String(), "one\n")
	assert.Contains(t, stdout.String(), "two\n")
}

func TestExec_Tee(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	stdout := &bytes.Buffer{}
	res, err := Exec(testContext(), `/bin/echo "tee me"`, &Options{
		Output: OutputTee,
		Stdout: stdout,
	})

	require.NoError(t, err)
	assert.Equal(t, "tee me\n", res.Output)
	assert.Equal(t, "tee me\n", stdout.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken console")
}

func TestExec_TeeConsoleFailureKeepsCapture(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), `/bin/sh -c "echo a; echo b; echo c"`, &Options{
		Output: OutputTee,
		Stdout: failingWriter{},
	})

	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", res.Output)
}

func TestExec_None(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	stdout := &bytes.Buffer{}
	res, err := Exec(testContext(), `/bin/echo discarded`, &Options{
		Output: OutputNone,
		Stdout: stdout,
	})

	require.NoError(t, err)
	assert.True(t, res.Status.Succeeded)
	assert.Empty(t, res.Output)
	assert.Empty(t, stdout.String())
}

func TestExec_NoneLargeOutputDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(testContext(), 30*time.Second)
	defer cancel()

	res, err := Exec(ctx, `/bin/sh -c "head -c 1000000 /dev/zero; head -c 1000000 /dev/zero >&2"`, &Options{
		Output: OutputNone,
	})

	require.NoError(t, err)
	assert.True(t, res.Status.Succeeded)
}

func TestExec_NonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), `/bin/sh -c "exit 7"`, &Options{Output: OutputCapture})

	require.NoError(t, err, "a non-zero exit is not an error")
	assert.Equal(t, 7, res.Status.ExitCode)
	assert.False(t, res.Status.Succeeded)
	assert.Equal(t, `/bin/sh -c "exit 7"`, res.Command)
}

func TestExec_NilOptions(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), "/bin/sh -c true", nil)

	require.NoError(t, err)
	assert.True(t, res.Status.Succeeded)
	assert.Empty(t, res.Output)
}

func TestExec_InvalidCommand(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, command := range []string{"", "   ", "\t\n"} {
		res, err := Exec(testContext(), command, nil)

		require.ErrorIs(t, err, ErrInvalidCommand, "command %q", command)
		assert.Nil(t, res)
	}
}

func TestExec_NotFound(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), "/not/a/real/command", &Options{Output: OutputCapture})

	var pathErr *os.PathError

	require.ErrorAs(t, err, &pathErr, "expected PathError")
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.Nil(t, res)
}

func TestExec_NotInPath(t *testing.T) {
	defer goleak.VerifyNone(t)

	res, err := Exec(testContext(), "runexec-definitely-not-a-command arg", nil)

	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	require.ErrorIs(t, err, commandinpath.ErrCommandNotFound)
	assert.Nil(t, res)
}

func TestExec_BadWorkingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	res, err := Exec(testContext(), "/bin/sh -c true", &Options{
		Output:           OutputCapture,
		WorkingDirectory: filepath.Join(t.TempDir(), "missing"),
	})

	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.Nil(t, res)
}

func TestExec_WorkingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	res, err := Exec(testContext(), `/bin/sh -c "pwd -P"`, &Options{
		Output:           OutputCapture,
		WorkingDirectory: dir,
	})

	require.NoError(t, err)
	assert.Equal(t, dir+"\n", res.Output)
}

func TestExec_EnvReplacesEnvironment(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)
	t.Setenv("RUNEXEC_TEST_PARENT", "parent")

	res, err := Exec(testContext(), `/bin/sh -c "printf %s:%s $FOO ${RUNEXEC_TEST_PARENT:-unset}"`, &Options{
		Output: OutputCapture,
		Env:    map[string]string{"FOO": "BAR"},
	})

	require.NoError(t, err)
	assert.Equal(t, "BAR:unset", res.Output)
}

func TestExec_NilEnvInherits(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)
	t.Setenv("RUNEXEC_TEST_PARENT", "parent")

	res, err := Exec(testContext(), `/bin/sh -c "printf %s $RUNEXEC_TEST_PARENT"`, &Options{
		Output: OutputCapture,
	})

	require.NoError(t, err)
	assert.Equal(t, "parent", res.Output)
}

func TestExec_ContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(testContext(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := Exec(ctx, "/bin/sh -c \"echo started; exec sleep 10\"", &Options{Output: OutputCapture})

	assert.Less(t, time.Since(start), 5*time.Second, "process should have been killed")
	require.ErrorIs(t, err, ErrContextDone)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, res)
	assert.Equal(t, -1, res.Status.ExitCode)
	assert.False(t, res.Status.Succeeded)
	assert.ErrorIs(t, res.Error, ErrContextDone)
	assert.Equal(t, "started\n", res.Output)
}

func TestExec_VerboseLogging(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	logs := &bytes.Buffer{}
	ctx := bufferedLogContext(logs, slog.LevelInfo)

	_, err := Exec(ctx, `/bin/echo "hello world"`, &Options{
		Output:  OutputCapture,
		Verbose: true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"exec start"`)
	assert.Contains(t, lines[0], `"splits":["/bin/echo","hello world"]`)
	assert.Contains(t, lines[0], `"output":"capture"`)
	assert.Contains(t, lines[1], `"msg":"exec result"`)
	assert.Contains(t, lines[1], `"exitCode":0`)

	id := extractField(t, lines[0], "execContext")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, extractField(t, lines[1], "execContext"), "both records share one correlation id")
}

func TestExec_QuietByDefault(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	logs := &bytes.Buffer{}
	ctx := bufferedLogContext(logs, slog.LevelInfo)

	_, err := Exec(ctx, "/bin/echo quiet", &Options{Output: OutputCapture})
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestExec_VerboseProgress(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	stubs := gostub.Stub(&progressInterval, 20*time.Millisecond)
	defer stubs.Reset()

	logs := &bytes.Buffer{}
	ctx := bufferedLogContext(logs, slog.LevelInfo)

	res, err := Exec(ctx, `/bin/sh -c "echo first; sleep 1"`, &Options{
		Output:  OutputCapture,
		Verbose: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Status.Succeeded)
	assert.Contains(t, logs.String(), `"msg":"command still running"`)
	assert.Contains(t, logs.String(), `"lastLine":"first"`)

	if runtime.GOOS == "linux" {
		assert.Contains(t, logs.String(), `"rssBytes":`)
	}
}

func extractField(t *testing.T, line, key string) string {
	t.Helper()

	marker := `"` + key + `":"`
	idx := strings.Index(line, marker)
	require.GreaterOrEqual(t, idx, 0, "field %s not found in %s", key, line)

	rest := line[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	require.GreaterOrEqual(t, end, 0)

	return rest[:end]
}
