// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var errLaunch = errors.New("launch failed")

// fakeExec returns canned outcomes keyed by command and records the commands it saw.
type fakeExec struct {
	exitCodes map[string]int
	errs      map[string]error
	seen      []string
}

func (f *fakeExec) exec(_ context.Context, command string, _ *Options) (*Result, error) {
	f.seen = append(f.seen, command)

	if err, ok := f.errs[command]; ok {
		return nil, err
	}

	return &Result{Command: command, Status: newStatus(f.exitCodes[command])}, nil
}

func stubExec(t *testing.T, f *fakeExec) {
	t.Helper()

	stubs := gostub.Stub(&execFunc, f.exec)
	t.Cleanup(stubs.Reset)
}

func TestExecSequence_AllSucceed(t *testing.T) {
	f := &fakeExec{}
	stubExec(t, f)

	results, err := ExecSequence(context.Background(), []string{"a", "b", "c"}, nil)

	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.False(t, results.HasError())
	assert.Equal(t, []string{"a", "b", "c"}, f.seen)
}

func TestExecSequence_StopsOnFailure(t *testing.T) {
	f := &fakeExec{exitCodes: map[string]int{"b": 2}}
	stubExec(t, f)

	results, err := ExecSequence(context.Background(), []string{"a", "b", "c"}, nil)

	require.NoError(t, err, "a non-zero exit is not an error")
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[1].Status.ExitCode)
	assert.True(t, results.HasError())
	assert.Equal(t, []string{"a", "b"}, f.seen)
}

func TestExecSequence_ContinueOnFailure(t *testing.T) {
	f := &fakeExec{exitCodes: map[string]int{"a": 1, "b": 2}}
	stubExec(t, f)

	results, err := ExecSequence(context.Background(), []string{"a", "b", "c"}, &Options{ContinueOnError: true})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Status.ExitCode)
	assert.Equal(t, 2, results[1].Status.ExitCode)
	assert.True(t, results[2].Status.Succeeded)
}

func TestExecSequence_LaunchErrorStops(t *testing.T) {
	f := &fakeExec{errs: map[string]error{"b": errLaunch}}
	stubExec(t, f)

	results, err := ExecSequence(context.Background(), []string{"a", "b", "c"}, nil)

	require.ErrorIs(t, err, errLaunch)
	require.Len(t, results, 1, "partial results are returned")
	assert.Equal(t, "a", results[0].Command)
	assert.Equal(t, []string{"a", "b"}, f.seen)
}

func TestExecSequence_LaunchErrorsAggregatedWhenContinuing(t *testing.T) {
	errOther := errors.New("other failure")
	f := &fakeExec{errs: map[string]error{"a": errLaunch, "c": errOther}}
	stubExec(t, f)

	results, err := ExecSequence(context.Background(), []string{"a", "b", "c"}, &Options{ContinueOnError: true})

	require.Error(t, err)
	assert.ErrorIs(t, err, errLaunch)
	assert.ErrorIs(t, err, errOther)

	var merr *multierror.Error

	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	require.Len(t, results, 3)
	assert.Equal(t, -1, results[0].Status.ExitCode)
	assert.ErrorIs(t, results[0].Error, errLaunch)
	assert.True(t, results[1].Status.Succeeded)
	assert.ErrorIs(t, results[2].Error, errOther)
	assert.True(t, results.HasError())
}

func TestExecSequence_Empty(t *testing.T) {
	f := &fakeExec{}
	stubExec(t, f)

	results, err := ExecSequence(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, results.HasError())
}

func TestExecSequence_ContextDoneBeforeStart(t *testing.T) {
	f := &fakeExec{}
	stubExec(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := ExecSequence(ctx, []string{"a", "b"}, &Options{ContinueOnError: true})

	require.ErrorIs(t, err, ErrContextDone)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.Empty(t, f.seen)
}

func TestExecSequence_RealCommands(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	commands := []string{
		`/bin/sh -c "echo one"`,
		`/bin/sh -c "echo two; exit 3"`,
		`/bin/sh -c "echo three"`,
	}

	t.Run("stop", func(t *testing.T) {
		results, err := ExecSequence(testContext(), commands, &Options{Output: OutputCapture})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "one\n", results[0].Output)
		assert.Equal(t, "two\n", results[1].Output)
		assert.Equal(t, 3, results[1].Status.ExitCode)
	})

	t.Run("continue", func(t *testing.T) {
		results, err := ExecSequence(testContext(), commands, &Options{
			Output:          OutputCapture,
			ContinueOnError: true,
		})

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "three\n", results[2].Output)
		assert.True(t, results.HasError())
	})

	t.Run("true false true", func(t *testing.T) {
		seq := []string{"true", "false", "true"}

		results, err := ExecSequence(testContext(), seq, &Options{Output: OutputNone})
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = ExecSequence(testContext(), seq, &Options{Output: OutputNone, ContinueOnError: true})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("invalid command continues", func(t *testing.T) {
		results, err := ExecSequence(testContext(), []string{"", `/bin/sh -c "echo after"`}, &Options{
			Output:          OutputCapture,
			ContinueOnError: true,
		})

		require.ErrorIs(t, err, ErrInvalidCommand)
		require.Len(t, results, 2)
		assert.ErrorIs(t, results[0].Error, ErrInvalidCommand)
		assert.Equal(t, "after\n", results[1].Output)
	})
}

func TestExecSequence_CancelledMidCommandStops(t *testing.T) {
	defer goleak.VerifyNone(t)
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(testContext())
	defer cancel()

	f := &fakeExec{}
	stubs := gostub.Stub(&execFunc, func(ctx context.Context, command string, opts *Options) (*Result, error) {
		f.seen = append(f.seen, command)
		cancel()

		return &Result{Command: command, Status: newStatus(-1), Error: ErrContextDone}, ErrContextDone
	})
	defer stubs.Reset()

	results, err := ExecSequence(ctx, []string{"a", "b"}, &Options{ContinueOnError: true})

	require.ErrorIs(t, err, ErrContextDone)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"a"}, f.seen)
}
