// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the runexec command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/runexec"
	"github.com/matt-FFFFFF/runexec/cmd/runexec/run"
	"github.com/matt-FFFFFF/runexec/cmd/runexec/show"
	"github.com/matt-FFFFFF/runexec/cmd/runexec/split"
	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
	"github.com/matt-FFFFFF/runexec/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
		split.SplitCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "runexec",
	Description: `runexec runs command lines as child processes, one after another,
without a shell. Output can be discarded, streamed, captured or both,
and a sequence stops at the first failing command unless told to continue.`,
	Usage:     `runexec run "go vet ./..." "go test ./..."`,
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion:     true,
	DisableSliceFlagSeparator: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	broker := signalbroker.New(ctx)
	defer broker.Stop()

	go signalbroker.Watch(ctx, broker.C, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", runexec.Version, runexec.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
