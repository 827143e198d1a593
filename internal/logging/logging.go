// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/logging/logging.go
// Summary: Category-tagged debug logging to a file.
// Usage: Init once from main when --debug is set; every package logs through here.
// Notes: Nothing is ever written to the terminal while the dashboard owns it.

// Package logging provides structured, category-tagged logging for texeltail.
// Output goes to a debug log file; when logging is not initialised every call
// is a cheap no-op.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Category groups related log messages.
type Category string

const (
	CatLayout  Category = "layout"  // grid computation and rebuilds
	CatBuffer  Category = "buffer"  // file open, rescan, read errors
	CatPane    Category = "pane"    // viewport attach, focus, repaint
	CatWatcher Category = "watcher" // file-change notifications
	CatSched   Category = "sched"   // task start, stop, join
	CatInput   Category = "input"   // key dispatch
	CatConfig  Category = "config"  // option parsing
	CatScreen  Category = "screen"  // screen backend lifecycle
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled bool
)

// Init opens path (truncating it) and routes all log output there at debug
// level. The returned cleanup closes the file and restores the no-op logger.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) //nolint:gosec // user-selected debug log
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return func() {
		SetOutput(nil)
		_ = f.Close()
	}, nil
}

// SetOutput redirects logging to w. A nil writer disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		enabled = false
		return
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	enabled = true
}

// Enabled reports whether a log destination is configured.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	emit(slog.LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	emit(slog.LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	emit(slog.LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	emit(slog.LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value attached.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	emit(slog.LevelError, cat, msg, fields...)
}

func emit(level slog.Level, cat Category, msg string, fields ...any) {
	mu.RLock()
	l, on := logger, enabled
	mu.RUnlock()
	if !on {
		return
	}
	args := make([]any, 0, len(fields)+2)
	args = append(args, "cat", string(cat))
	args = append(args, fields...)
	l.Log(context.Background(), level, msg, args...)
}
