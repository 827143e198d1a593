// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/tail/signals.go
// Summary: Process signal subscription for the control loop.

package tailruntime

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals subscribes to terminating signals, and to terminal resizes
// when resize is set.
func notifySignals(resize bool) (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 4)
	sigs := []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	if resize {
		sigs = append(sigs, syscall.SIGWINCH)
	}
	signal.Notify(ch, sigs...)
	return ch, func() { signal.Stop(ch) }
}
