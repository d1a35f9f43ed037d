// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath resolves a program name to an executable file using the PATH
// environment variable.
package commandinpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	goosWindows = "windows"
	execBits    = 0o111
)

var (
	// ErrCommandNotFound is returned when no executable with the given name is on the PATH.
	ErrCommandNotFound = errors.New("command not found in PATH")
	// ErrEmptyCommand is returned for an empty program name.
	ErrEmptyCommand = errors.New("empty command")
)

// Find returns the path of the executable that would run for command.
//
// A command containing a path separator is returned unchanged, it is resolved by the
// operating system relative to the working directory of the new process.
// Otherwise each directory listed in the PATH variable of the current process is searched
// in order. Directories, and on Unix files without an execute bit, are skipped.
func Find(command string) (string, error) {
	if command == "" {
		return "", ErrEmptyCommand
	}

	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		return command, nil
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		for _, name := range candidates(command) {
			p := filepath.Join(dir, name)
			if isExecutable(p) {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrCommandNotFound, command)
}

// candidates returns the file names to try for command. On Windows the extensions
// listed in PATHEXT are tried when command has no extension of its own.
func candidates(command string) []string {
	if runtime.GOOS != goosWindows || filepath.Ext(command) != "" {
		return []string{command}
	}

	exts := filepath.SplitList(os.Getenv("PATHEXT"))
	if len(exts) == 0 {
		exts = []string{".com", ".exe", ".bat", ".cmd"}
	}

	names := make([]string, 0, len(exts))
	for _, e := range exts {
		names = append(names, command+strings.ToLower(e))
	}

	return names
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	if runtime.GOOS == goosWindows {
		return true
	}

	return info.Mode()&execBits != 0
}
