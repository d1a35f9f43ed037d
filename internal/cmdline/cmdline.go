// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdline

import (
	"regexp"
)

// tokenPattern matches either a run of characters that are neither whitespace nor
// a double quote, or a complete double-quoted span. Submatch 1 holds the interior of
// the quoted span.
var tokenPattern = regexp.MustCompile(`[^\s"]+|"([^"]*)"`)

const quotedGroup = 1

// Split returns the argument vector for the supplied command line.
// It returns nil if the command line contains no tokens.
func Split(command string) []string {
	matches := tokenPattern.FindAllStringSubmatchIndex(command, -1)
	if len(matches) == 0 {
		return nil
	}

	args := make([]string, 0, len(matches))

	for _, m := range matches {
		// A quoted span records the bounds of its interior in the submatch,
		// an unquoted run leaves them at -1.
		if start := m[2*quotedGroup]; start >= 0 {
			args = append(args, command[start:m[2*quotedGroup+1]])
			continue
		}

		args = append(args, command[m[0]:m[1]])
	}

	return args
}
