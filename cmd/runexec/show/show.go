// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the show command, which prints results saved by run --out.
package show

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/runexec/internal/color"
	"github.com/matt-FFFFFF/runexec/internal/report"
	"github.com/urfave/cli/v3"
)

const (
	fileArg        = "file"
	showOutputFlag = "show-output"
	successFlag    = "success"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrDecodeResults is returned when the results cannot be decoded from the file.
	ErrDecodeResults = errors.New("failed to decode results")
	// ErrWriteResults is returned when the results cannot be written to stdout.
	ErrWriteResults = errors.New("failed to write results to stdout")
)

// ShowCmd prints results previously saved with run --out.
var ShowCmd = newShowCmd()

func newShowCmd() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show previously saved results",
		Description: "Show results saved as YAML by run --out.",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "RESULTSFILE",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:     showOutputFlag,
				Usage:    "Include captured output of failed commands",
				Value:    true,
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     successFlag,
				Usage:    "Include captured output of successful commands",
				OnlyOnce: true,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			file, err := os.Open(cmd.StringArg(fileArg))
			if err != nil {
				return errors.Join(ErrReadFile, err)
			}
			defer file.Close() // nolint:errcheck

			results, err := report.ReadYAML(file)
			if err != nil {
				return errors.Join(ErrDecodeResults, err)
			}

			opts := &report.Options{
				ShowOutput:         cmd.Bool(showOutputFlag),
				ShowSuccessDetails: cmd.Bool(successFlag),
				Colour:             color.Enabled(),
			}

			w := cmd.Root().Writer

			if err := report.WriteText(w, results, opts); err != nil {
				return errors.Join(ErrWriteResults, err)
			}

			if err := report.WriteSummary(w, results, opts); err != nil {
				return errors.Join(ErrWriteResults, err)
			}

			return nil
		},
	}
}
