// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// Options control how commands are run.
// The zero value discards output, inherits the working directory and environment,
// and makes ExecSequence stop at the first failure.
type Options struct {
	Output           OutputMode        // Where the combined output of the command goes.
	Verbose          bool              // Log diagnostics around every command, at slog.LevelInfo.
	ContinueOnError  bool              // ExecSequence keeps going after a failed command.
	WorkingDirectory string            // Working directory of the command, empty to inherit.
	Env              map[string]string // Replaces the environment of the command when non-nil.
	Stdout           io.Writer         // Destination for OutputStdOut and OutputTee, defaults to os.Stdout.
}

// DefaultOptions returns the options used when nil is passed to Exec or ExecSequence.
// Output is streamed to os.Stdout.
func DefaultOptions() *Options {
	return &Options{
		Output: OutputStdOut,
	}
}

// LogValue implements slog.LogValuer.
// Only the names of environment variables are logged, never their values.
func (o *Options) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("output", o.Output.String()),
		slog.Bool("verbose", o.Verbose),
		slog.Bool("continueOnError", o.ContinueOnError),
	}

	if o.WorkingDirectory != "" {
		attrs = append(attrs, slog.String("workingDirectory", o.WorkingDirectory))
	}

	if o.Env != nil {
		attrs = append(attrs, slog.Any("env", slices.Sorted(maps.Keys(o.Env))))
	}

	return slog.GroupValue(attrs...)
}

func (o *Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}

	return o.Stdout
}

// environ returns the environment for a new process in KEY=VALUE form.
// It returns nil, meaning inherit, when no replacement environment was set.
func (o *Options) environ() []string {
	if o.Env == nil {
		return nil
	}

	env := make([]string, 0, len(o.Env))
	for _, k := range slices.Sorted(maps.Keys(o.Env)) {
		env = append(env, k+"="+o.Env[k])
	}

	return env
}
