// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/runtime_interfaces.go
// Summary: Screen, Window and file-change capabilities consumed by the pane engine.
// Usage: Implemented by TcellScreen, StdoutScreen and internal/watcher.

package texel

import (
	"errors"
	"time"

	"github.com/framegrace/texeltail/internal/watcher"
)

var (
	// ErrNoKey is returned by Screen.ReadKey when the timeout expired.
	ErrNoKey = errors.New("texel: no key pressed")
	// ErrScreenClosed is returned once Fini has run.
	ErrScreenClosed = errors.New("texel: screen closed")
	// ErrWindowDeleted is returned by operations on a deleted window.
	ErrWindowDeleted = errors.New("texel: window deleted")
)

// Rect is a rectangle of terminal cells.
type Rect struct {
	Y, X int // origin (row, column)
	H, W int // size in rows and columns
}

// Area returns the number of cells covered.
func (r Rect) Area() int { return r.H * r.W }

// Inset shrinks r by n cells on every side. Sizes never go negative.
func (r Rect) Inset(n int) Rect {
	out := Rect{Y: r.Y + n, X: r.X + n, H: r.H - 2*n, W: r.W - 2*n}
	if out.H < 0 {
		out.H = 0
	}
	if out.W < 0 {
		out.W = 0
	}
	return out
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.Y >= r.Y && o.X >= r.X && o.Y+o.H <= r.Y+r.H && o.X+o.W <= r.X+r.W
}

// Overlaps reports whether r and o share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Screen abstracts the terminal. Implementations serialize their own
// primitives internally because they all touch one device; callers layer
// their own locking on top for pane state.
type Screen interface {
	// Alloc creates a window covering r.
	Alloc(r Rect) (Window, error)
	// Size returns the terminal size in rows and columns.
	Size() (rows, cols int)
	// ReadKey waits up to timeout for a key. ErrNoKey means the timeout
	// expired; any other error is fatal to the input loop.
	ReadKey(timeout time.Duration) (Key, error)
	// Clear wipes the whole terminal.
	Clear() error
	// Fini restores the terminal. Further calls fail with ErrScreenClosed.
	Fini()
}

// Window is an allocated region of the screen. Coordinates passed to Print
// are relative to the window origin.
//
// Print text uses print-format: a literal percent sign must be written as
// "%%". Output is clipped to the window; it never wraps.
type Window interface {
	Print(y, x int, text string, standout bool) error
	Erase() error
	Refresh() error
	Resize(rows, cols int) error
	Move(y, x int) error
	Box() error
	SetBackground(theme Theme) error
	Delete() error
	Bounds() Rect
}

// Notifier is the file-change capability used by the scheduler's watcher task.
type Notifier interface {
	Watch(path string) (watcher.Handle, error)
	Poll(timeout time.Duration) ([]watcher.Event, error)
}
