// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run command, which executes a sequence of command lines.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/matt-FFFFFF/runexec"
	"github.com/matt-FFFFFF/runexec/internal/color"
	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
	"github.com/matt-FFFFFF/runexec/internal/report"
	"github.com/urfave/cli/v3"
)

const (
	outputFlag          = "output"
	verboseFlag         = "verbose"
	continueOnErrorFlag = "continue-on-error"
	cwdFlag             = "cwd"
	envFlag             = "env"
	fileFlag            = "file"
	outFlag             = "out"
	summaryFlag         = "summary"
	showOutputFlag      = "show-output"
	successFlag         = "success"
	cliExitStr          = ""
)

var (
	// ErrGetConfigFile is returned when the sequence file cannot be fetched.
	ErrGetConfigFile = errors.New("failed to get sequence file")
	// ErrInvalidEnv is returned when an --env value is not in KEY=VALUE form.
	ErrInvalidEnv = errors.New("invalid environment variable, expected KEY=VALUE")
	// ErrInvalidGetterURL is returned when a remote sequence file URL does not name a file
	// after a // subdirectory separator.
	ErrInvalidGetterURL = errors.New("remote sequence file URL must name a file after //")
)

// RunCmd runs command lines given as arguments or loaded from a sequence file.
var RunCmd = newRunCmd()

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run one or more command lines in order",
		ArgsUsage: "[--] [COMMAND ...]",
		Description: `Run each COMMAND in order, stopping at the first one that fails
unless --continue-on-error is given.

Every COMMAND is a full command line. It is split on whitespace, with double quotes
grouping words. No other shell syntax is interpreted, so pipes, redirection and
variable expansion need an explicit shell:

    runexec run 'go vet ./...' 'sh -c "go test ./... | tee test.log"'

Flags are read anywhere on the command line. Put -- before the commands when one of
them starts with a dash, so that it is not taken for a flag:

    runexec run -c -- 'make lint' -x

Commands can also be loaded from a YAML, HCL or JSON sequence file with --file.
Sequence file URLs use Hashicorp's go-getter syntax, which allows for fetching files
from various sources. See https://github.com/hashicorp/go-getter.
Commands given as arguments run after the commands from the file, and flags
override the settings of the file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     outputFlag,
				Aliases:  []string{"o"},
				Usage:    "Where command output goes: none, stdout, capture or tee",
				Value:    runexec.OutputStdOut.String(),
				OnlyOnce: true,
				Validator: func(s string) error {
					_, err := runexec.ParseOutputMode(s)
					return err
				},
			},
			&cli.BoolFlag{
				Name:     verboseFlag,
				Aliases:  []string{"v"},
				Usage:    "Log diagnostics around every command",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     continueOnErrorFlag,
				Aliases:  []string{"c"},
				Usage:    "Keep running after a command fails",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      cwdFlag,
				Aliases:   []string{"C"},
				Usage:     "Working directory of the commands",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.StringSliceFlag{
				Name:    envFlag,
				Aliases: []string{"e"},
				Usage: "Set an environment variable as KEY=VALUE. " +
					"When given, the commands see only the variables set with this flag. " +
					"Specify multiple times to set multiple variables.",
			},
			&cli.StringFlag{
				Name:     fileFlag,
				Aliases:  []string{"f"},
				Usage:    "URL of a sequence file to run, in go-getter syntax",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      outFlag,
				Usage:     "Write the results as YAML to this file",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:     summaryFlag,
				Usage:    "Print the results when all commands have run",
				Value:    true,
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     showOutputFlag,
				Usage:    "Include captured output of failed commands in the summary",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     successFlag,
				Usage:    "Include captured output of successful commands in the summary",
				OnlyOnce: true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	w := cmd.Root().Writer

	opts := runexec.DefaultOptions()

	var commands []string

	if url := cmd.String(fileFlag); url != "" {
		def, baseDir, err := getURL(ctx, url)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to get sequence file %s: %s", url, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		opts, err = def.Options(baseDir)
		if err != nil {
			logger.Error(fmt.Sprintf("Invalid sequence file %s: %s", url, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		commands = append(commands, def.Commands...)
	}

	commands = append(commands, cmd.Args().Slice()...)
	if len(commands) == 0 {
		logger.Error("Please specify at least one command, or a sequence file using the --file or -f flag.")
		return cli.Exit(cliExitStr, 1)
	}

	if err := applyFlags(cmd, opts); err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	opts.Stdout = w

	if opts.Verbose {
		ctxlog.RaiseLevel(slog.LevelInfo)
	}

	results, execErr := runexec.ExecSequence(ctx, commands, opts)
	if execErr != nil {
		logger.Error("Not all commands could be run", "error", execErr.Error())
	}

	if outFileName := cmd.String(outFlag); outFileName != "" {
		if err := writeResultsFile(outFileName, results); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results to file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Results written to %s", outFileName))
	}

	if cmd.Bool(summaryFlag) {
		ropts := &report.Options{
			ShowOutput:         cmd.Bool(showOutputFlag) || cmd.Bool(successFlag),
			ShowSuccessDetails: cmd.Bool(successFlag),
			Colour:             color.Enabled(),
		}

		fmt.Fprintln(w) //nolint:errcheck

		if err := report.WriteText(w, results, ropts); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		report.WriteSummary(w, results, ropts) //nolint:errcheck
	}

	if execErr != nil || results.HasError() {
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// applyFlags overrides opts with the flags set on the command line.
func applyFlags(cmd *cli.Command, opts *runexec.Options) error {
	if cmd.IsSet(outputFlag) {
		mode, err := runexec.ParseOutputMode(cmd.String(outputFlag))
		if err != nil {
			return err
		}

		opts.Output = mode
	}

	if cmd.Bool(verboseFlag) {
		opts.Verbose = true
	}

	if cmd.Bool(continueOnErrorFlag) {
		opts.ContinueOnError = true
	}

	if cmd.IsSet(cwdFlag) {
		opts.WorkingDirectory = cmd.String(cwdFlag)
	}

	if cmd.IsSet(envFlag) {
		env, err := parseEnv(cmd.StringSlice(envFlag))
		if err != nil {
			return err
		}

		opts.Env = env
	}

	return nil
}

// parseEnv converts KEY=VALUE pairs to a map. The value may be empty or contain '='.
func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, pair)
		}

		env[k] = v
	}

	return env, nil
}

func writeResultsFile(name string, results runexec.Results) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := report.WriteYAML(f, results); err != nil {
		f.Close() //nolint:errcheck
		return err
	}

	return f.Close()
}
