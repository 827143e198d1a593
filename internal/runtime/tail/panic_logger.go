// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/tail/panic_logger.go
// Summary: Panic capture for runtime goroutines.

package tailruntime

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/framegrace/texeltail/internal/logging"
)

// PanicLogger captures panic stack traces and optionally persists them to disk.
type PanicLogger struct {
	path    string
	mu      sync.Mutex
	cleanup func()
	exit    func(int)
}

// NewPanicLogger constructs a panic logger that writes to the provided path if non-empty.
// cleanup runs before the process exits, typically to restore the terminal.
func NewPanicLogger(path string, cleanup func()) *PanicLogger {
	return &PanicLogger{path: path, cleanup: cleanup, exit: os.Exit}
}

// Recover should be deferred in goroutines to capture panics.
func (p *PanicLogger) Recover(context string) {
	if r := recover(); r != nil {
		p.handle(context, r)
	}
}

// Wrap returns fn with panic recovery bound to context, for use with errgroup.
func (p *PanicLogger) Wrap(context string, fn func() error) func() error {
	return func() error {
		defer p.Recover(context)
		return fn()
	}
}

func (p *PanicLogger) handle(context string, r interface{}) {
	if p.cleanup != nil {
		p.cleanup()
	}
	buf := make([]byte, 1<<16)
	n := runtime.Stack(buf, true)
	stack := buf[:n]
	logging.Error(logging.CatSched, "panic", "context", context, "value", fmt.Sprint(r), "stack", string(stack))
	fmt.Fprintf(os.Stderr, "panic in %s: %v\n%s\n", context, r, stack)
	p.persist(context, r, stack)
	p.exit(2)
}

func (p *PanicLogger) persist(context string, r interface{}, stack []byte) {
	if p.path == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logging.Warn(logging.CatSched, "unable to write panic log", "path", p.path, "error", err)
		return
	}
	defer f.Close()
	ts := time.Now().Format(time.RFC3339Nano)
	fmt.Fprintf(f, "[%s] panic in %s: %v\n%s\n", ts, context, r, stack)
}
