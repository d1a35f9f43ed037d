// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runexec runs external commands given as shell-like command lines.
//
// A command line is split into arguments honouring double quotes, the first argument is
// looked up on the PATH and the process is started directly, without a shell.
// Its combined standard output and standard error can be discarded, streamed to the
// caller's standard output, captured into the returned Result, or both.
//
//	res, err := runexec.Exec(ctx, `go test "./..."`, &runexec.Options{Output: runexec.OutputTee})
//	if err != nil {
//		// the command was empty or could not be started
//	}
//	if !res.Status.Succeeded {
//		fmt.Println("failed with", res.Status.ExitCode)
//	}
//
// ExecSequence runs several command lines in order and stops at the first one that
// exits non-zero, unless Options.ContinueOnError is set.
//
// Shell features such as pipes, redirection, globbing and variable expansion are not supported.
package runexec
