// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lastline provides an io.Writer that remembers the most recent complete
// line written to it. It is used to report progress of long running commands
// without holding on to their whole output.
package lastline
