// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package split implements the split command, which shows how a command line is tokenized.
package split

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/runexec/internal/cmdline"
	"github.com/urfave/cli/v3"
)

const (
	quoteFlag = "quote"
)

// SplitCmd prints the program and arguments a command line is split into.
var SplitCmd = newSplitCmd()

func newSplitCmd() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Print the tokens a command line is split into, one per line",
		ArgsUsage: "[--] COMMAND",
		Description: `Split COMMAND the same way run does and print one token per line.
Multiple arguments are joined with a single space first.

Flags are read anywhere on the command line, so an argument starting with a dash
must follow --, or be part of a single quoted COMMAND:

    runexec split -- ls -la
    runexec split 'ls -la'`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:     quoteFlag,
				Aliases:  []string{"q"},
				Usage:    "Print tokens as quoted Go strings so that empty tokens and spaces are visible",
				OnlyOnce: true,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer

			for _, tok := range cmdline.Split(strings.Join(cmd.Args().Slice(), " ")) {
				if cmd.Bool(quoteFlag) {
					tok = strconv.Quote(tok)
				}

				if _, err := fmt.Fprintln(w, tok); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
