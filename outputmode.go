// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runexec

import (
	"errors"
	"fmt"
	"strings"
)

// OutputMode defines what happens to the output of a command.
type OutputMode int

const (
	// OutputNone discards the output.
	OutputNone OutputMode = iota
	// OutputStdOut streams the output to the caller's standard output.
	OutputStdOut
	// OutputCapture collects the output into Result.Output.
	OutputCapture
	// OutputTee streams the output and collects it.
	OutputTee
)

const (
	outputNoneStr    = "none"
	outputStdOutStr  = "stdout"
	outputCaptureStr = "capture"
	outputTeeStr     = "tee"
	outputUnknownStr = "unknown"
)

var (
	// ErrUnknownOutputMode is returned when a string does not name an OutputMode.
	ErrUnknownOutputMode = errors.New("unknown output mode")
)

// String returns the name of the OutputMode as accepted by ParseOutputMode.
func (m OutputMode) String() string {
	switch m {
	case OutputNone:
		return outputNoneStr
	case OutputStdOut:
		return outputStdOutStr
	case OutputCapture:
		return outputCaptureStr
	case OutputTee:
		return outputTeeStr
	default:
		return outputUnknownStr
	}
}

// ParseOutputMode returns the OutputMode named by s, ignoring case and surrounding space.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case outputNoneStr:
		return OutputNone, nil
	case outputStdOutStr:
		return OutputStdOut, nil
	case outputCaptureStr:
		return OutputCapture, nil
	case outputTeeStr:
		return OutputTee, nil
	default:
		return OutputMode(-1), fmt.Errorf("%w: %q", ErrUnknownOutputMode, s)
	}
}

// captures reports whether output is collected into the Result.
func (m OutputMode) captures() bool {
	return m == OutputCapture || m == OutputTee
}

// streams reports whether output is written to the caller's standard output.
func (m OutputMode) streams() bool {
	return m == OutputStdOut || m == OutputTee
}

// MarshalText implements encoding.TextMarshaler.
func (m OutputMode) MarshalText() ([]byte, error) {
	if m.String() == outputUnknownStr {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutputMode, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OutputMode) UnmarshalText(text []byte) error {
	v, err := ParseOutputMode(string(text))
	if err != nil {
		return err
	}

	*m = v

	return nil
}
