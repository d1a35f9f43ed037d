// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger inside a context.Context.
//
// Code that runs commands takes the logger from the context it was given rather than
// from a global, so callers decide where diagnostics go.
// The shared LevelVar is initialised from the RUNEXEC_LOG_LEVEL environment variable,
// which accepts DEBUG, INFO, WARN or ERROR. Anything else means WARN.
package ctxlog
