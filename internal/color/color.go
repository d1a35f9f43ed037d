// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	csi   = "\033["
	sgr   = "m"
	reset = csi + "0" + sgr
)

// Code is an ANSI SGR parameter.
type Code int

// Text attributes.
const (
	Reset Code = 0
	Bold  Code = 1
	Faint Code = 2
)

// Foreground colours.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// High intensity foreground colours.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled = isColorCapable()

// Enabled reports whether colour output was detected as enabled at startup.
func Enabled() bool {
	return enabled
}

// ControlString returns the escape sequence selecting codes.
// It is returned even if colour is disabled, callers decide whether to use it.
func ControlString(codes ...Code) string {
	sb := strings.Builder{}
	sb.WriteString(csi)

	for i, c := range codes {
		if i > 0 {
			sb.WriteByte(';')
		}

		sb.WriteString(strconv.Itoa(int(c)))
	}

	sb.WriteString(sgr)

	return sb.String()
}

// Wrap surrounds s with codes and a trailing reset regardless of whether colour is enabled.
func Wrap(s string, codes ...Code) string {
	return ControlString(codes...) + s + reset
}

// Colorize is Wrap when colour is enabled, otherwise it returns s unchanged.
func Colorize(s string, codes ...Code) string {
	if !enabled {
		return s
	}

	return Wrap(s, codes...)
}

// ColorizeNoReset selects codes before s but leaves them active afterwards.
func ColorizeNoReset(s string, codes ...Code) string {
	if !enabled {
		return s
	}

	return ControlString(codes...) + s
}

// ResetString returns the reset sequence when colour is enabled, otherwise "".
func ResetString() string {
	if !enabled {
		return ""
	}

	return reset
}

func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
