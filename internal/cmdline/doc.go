// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdline splits a shell-like command line into an argument vector.
//
// Only double quotes are understood: a double-quoted span becomes one argument
// with the quotes removed. Everything else is split on whitespace.
// There is no support for escaping, single quotes, nested quoting or
// any other shell feature such as variable expansion or globbing.
package cmdline
