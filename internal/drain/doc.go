// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package drain consumes several output streams of a child process and forwards
// everything read, in arrival order, to a single destination writer.
//
// Each stream is read by its own goroutine but all writes to the destination happen
// on the calling goroutine, so the destination does not need to be safe for
// concurrent use. Drain returns once every stream has reached end of file.
// A read error is treated the same as end of file for that stream.
package drain
