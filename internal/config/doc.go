// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads sequence definitions from YAML, HCL or HCL-flavoured JSON files.
//
// A definition lists commands to run in order, with the options shared by all of them:
//
//	name: build
//	output: tee
//	continue_on_error: false
//	working_directory: ./src
//	env:
//	  GOFLAGS: -mod=mod
//	commands:
//	  - go vet ./...
//	  - go test ./...
//
// HCL files use the same attribute names and may call getenv("NAME") to read the
// environment of the runexec process.
package config
