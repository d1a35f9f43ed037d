// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
)

// Watch monitors sigCh and calls cancel on the second signal of a given type.
// Signal delivery to sigCh is stopped at that point.
// It returns when cancel has been called, ctx is done or sigCh is closed.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return

		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "watchdog",
					"detail", "received second signal of type, killing running command",
					"signal", sig.String(),
				)
				signal.Stop(sigCh)
				cancel()

				return
			}

			ctxlog.Warn(ctx, "watchdog",
				"detail", "received signal, waiting for running command, repeat to abort",
				"signal", sig.String(),
			)

			seen[sig] = struct{}{}
		}
	}
}
