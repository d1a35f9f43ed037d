// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker relays the signals that should stop runexec to a channel.
//
// Child processes share the terminal and receive the same signal, so the first one
// is left for the running command to handle. Watch cancels the context, and with it
// any running command, on the second signal of the same type.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/runexec/internal/ctxlog"
)

// DefaultSignals returns the signals relayed when New is given none.
// os.Interrupt is syscall.SIGINT on Unix, so it is listed once.
func DefaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT}
}

// Broker relays signals to C until Stop is called.
type Broker struct {
	C    chan os.Signal
	sigs []os.Signal
}

// New starts relaying sigs, or DefaultSignals if none are given, to the returned Broker.
func New(ctx context.Context, sigs ...os.Signal) *Broker {
	if len(sigs) == 0 {
		sigs = DefaultSignals()
	}

	b := &Broker{
		C:    make(chan os.Signal, 1),
		sigs: sigs,
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "relaying signals", "signals", sigs)
	signal.Notify(b.C, sigs...)

	return b
}

// Signals returns the signals b relays.
func (b *Broker) Signals() []os.Signal {
	return b.sigs
}

// Stop ends delivery to C. C is not closed.
func (b *Broker) Stop() {
	signal.Stop(b.C)
}
