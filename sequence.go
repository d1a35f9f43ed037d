// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
)

// execFunc runs one command of a sequence.
var execFunc = Exec

// ExecSequence runs commands one after another with the same options.
// A nil opts uses DefaultOptions.
//
// Without ContinueOnError the sequence stops after the first command that does not
// exit with code 0, and an invalid command or a launch failure is returned as an
// error together with the results gathered so far.
// With ContinueOnError every command runs. A command that could not be run is
// recorded as a Result with exit code -1 and its Error set, and all such errors are
// returned together.
// When ctx is done the sequence always stops.
func ExecSequence(ctx context.Context, commands []string, opts *Options) (Results, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	logger := ctxlog.Logger(ctx).With("runnableType", "sequence")
	logger.DebugContext(ctx, "sequence start",
		"commands", len(commands),
		"continueOnError", opts.ContinueOnError,
	)

	results := make(Results, 0, len(commands))

	var errs *multierror.Error

	for i, command := range commands {
		if err := ctx.Err(); err != nil {
			logger.InfoContext(ctx, "context done, stopping sequence", "remaining", len(commands)-i)
			errs = multierror.Append(errs, errors.Join(ErrContextDone, err))

			break
		}

		res, err := execFunc(ctx, command, opts)
		if err != nil {
			err = fmt.Errorf("command %d (%q): %w", i, command, err)
			errs = multierror.Append(errs, err)

			if res != nil {
				// Only cancellation returns both, and it ends the sequence.
				results = append(results, res)
				break
			}

			if !opts.ContinueOnError {
				logger.DebugContext(ctx, "command could not be run, stopping sequence", "index", i, "error", err)
				break
			}

			results = append(results, &Result{
				Command: command,
				Status:  newStatus(-1),
				Error:   err,
			})

			continue
		}

		results = append(results, res)

		if !res.Status.Succeeded && !opts.ContinueOnError {
			logger.DebugContext(ctx, "command failed, stopping sequence",
				"index", i,
				"exitCode", res.Status.ExitCode,
			)

			break
		}
	}

	logger.DebugContext(ctx, "sequence finished",
		"ran", len(results),
		"hasError", results.HasError(),
	)

	return results, errs.ErrorOrNil()
}
