// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/runexec"
	"github.com/matt-FFFFFF/runexec/internal/color"
)

const unnamedCommand = "[empty command]"

// Options controls what is included in the text report.
type Options struct {
	ShowOutput         bool // Whether to include captured output
	ShowSuccessDetails bool // Whether to show output for successful commands too
	Colour             bool // Whether to emit ANSI colour sequences
}

// DefaultOptions returns the options used when nil is passed to WriteText.
func DefaultOptions() *Options {
	return &Options{
		ShowOutput:         true,
		ShowSuccessDetails: false,
		Colour:             color.Enabled(),
	}
}

// WriteText writes one status line per result to w, followed by error details
// and, if requested, the captured output.
func WriteText(w io.Writer, results runexec.Results, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	for _, r := range results {
		if err := writeResult(w, r, opts); err != nil {
			return err
		}
	}

	return nil
}

// WriteSummary writes a single line counting succeeded and failed results.
func WriteSummary(w io.Writer, results runexec.Results, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	failed := 0

	for _, r := range results {
		if r.Error != nil || !r.Status.Succeeded {
			failed++
		}
	}

	summary := fmt.Sprintf("%d command(s) run, %d succeeded, %d failed", len(results), len(results)-failed, failed)

	c := color.FgGreen
	if failed > 0 {
		c = color.FgRed
	}

	_, err := fmt.Fprintln(w, paint(opts, summary, color.Bold, c))

	return err
}

func writeResult(w io.Writer, r *runexec.Result, opts *Options) error {
	failed := r.Error != nil || !r.Status.Succeeded

	statusStr := paint(opts, "✓", color.FgGreen)
	labelCodes := []color.Code{color.Bold, color.FgGreen}

	if failed {
		statusStr = paint(opts, "✗", color.FgRed)
		labelCodes = []color.Code{color.Bold, color.FgRed}
	}

	label := r.Command
	if strings.TrimSpace(label) == "" {
		label = unnamedCommand
	}

	line := fmt.Sprintf("%s %s", statusStr, paint(opts, label, labelCodes...))

	if r.Status.ExitCode != 0 {
		line += fmt.Sprintf(" (exit code: %d)", r.Status.ExitCode)
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	if r.Error != nil {
		if _, err := fmt.Fprintf(w, "  %s %s\n", paint(opts, "➜ Error:", color.FgRed), r.Error.Error()); err != nil {
			return err
		}
	}

	showDetails := failed || opts.ShowSuccessDetails
	if !showDetails || !opts.ShowOutput || r.Output == "" {
		return nil
	}

	if _, err := fmt.Fprintln(w, "  ➜ Output:"); err != nil {
		return err
	}

	_, err := io.WriteString(w, formatOutput(r.Output, "     "))

	return err
}

func paint(opts *Options, s string, codes ...color.Code) string {
	if !opts.Colour {
		return s
	}

	return color.Wrap(s, codes...)
}

// formatOutput indents every non-empty line of output.
func formatOutput(output string, indent string) string {
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	sb := strings.Builder{}
	sb.Grow(len(output) + len(lines)*(len(indent)+1))

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
