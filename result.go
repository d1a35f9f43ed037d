// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"log/slog"
	"slices"
)

// Status is the normalised completion status of a command.
type Status struct {
	ExitCode  int  // Exit code of the process, -1 if it was killed or never ran.
	Succeeded bool // True if and only if ExitCode is 0.
}

func newStatus(exitCode int) Status {
	return Status{
		ExitCode:  exitCode,
		Succeeded: exitCode == 0,
	}
}

// Result is the outcome of running one command.
type Result struct {
	Command string // The command line as given.
	Status  Status // How the process completed.
	Output  string // Combined output, only set for OutputCapture and OutputTee.
	Error   error  // Set when the command could not be run to completion.
}

// Results holds one Result per command attempted, in order.
type Results []*Result

// HasError reports whether any result failed or carries an error.
func (r Results) HasError() bool {
	return slices.ContainsFunc(r, func(res *Result) bool {
		return res.Error != nil || !res.Status.Succeeded
	})
}

// LogValue implements slog.LogValuer.
func (r *Result) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("command", r.Command),
		slog.Int("exitCode", r.Status.ExitCode),
		slog.Bool("succeeded", r.Status.Succeeded),
		slog.String("output", r.Output),
	}

	if r.Error != nil {
		attrs = append(attrs, slog.String("error", r.Error.Error()))
	}

	return slog.GroupValue(attrs...)
}
