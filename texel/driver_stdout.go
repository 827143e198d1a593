// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/driver_stdout.go
// Summary: Plain line-oriented Screen used when stdout is not a terminal.
// Usage: Every primitive is written as one trace line; no input is read.

package texel

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/framegrace/texeltail/internal/logging"
)

const (
	fallbackRows = 24
	fallbackCols = 80
)

// StdoutScreen writes a textual trace of screen operations to a writer. It
// is the fallback backend for pipes and logs, and is handy for debugging.
type StdoutScreen struct {
	mu     sync.Mutex
	out    *termenv.Output
	w      io.Writer
	rows   int
	cols   int
	nextID int
	quit   chan struct{}
	once   sync.Once
	closed bool
}

// NewStdoutScreen traces to w. The terminal size comes from fd when it is a
// terminal, then from $LINES/$COLUMNS, then 24x80.
func NewStdoutScreen(w io.Writer, fd int) *StdoutScreen {
	rows, cols := fallbackRows, fallbackCols
	if term.IsTerminal(fd) {
		if c, r, err := term.GetSize(fd); err == nil && r > 0 && c > 0 {
			rows, cols = r, c
		}
	} else {
		if v, err := strconv.Atoi(os.Getenv("LINES")); err == nil && v > 0 {
			rows = v
		}
		if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && v > 0 {
			cols = v
		}
	}
	return &StdoutScreen{
		out:  termenv.NewOutput(w, termenv.WithProfile(traceProfile(os.Getenv("TERM")))),
		w:    w,
		rows: rows,
		cols: cols,
		quit: make(chan struct{}),
	}
}

// traceProfile picks the escape sequences used for standout text. The output
// is usually a pipe, so the profile follows $TERM rather than tty detection.
func traceProfile(termName string) termenv.Profile {
	switch termName {
	case "", "dumb":
		return termenv.Ascii
	}
	return termenv.ANSI
}

func (s *StdoutScreen) printf(format string, args ...any) error {
	if s.closed {
		return ErrScreenClosed
	}
	_, err := fmt.Fprintf(s.w, format, args...)
	return err
}

func (s *StdoutScreen) Alloc(r Rect) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	w := &stdoutWindow{owner: s, id: s.nextID, rect: r}
	if err := s.printf("alloc %s\n", w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *StdoutScreen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// ReadKey never produces input; it only paces the control loop.
func (s *StdoutScreen) ReadKey(timeout time.Duration) (Key, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.quit:
		return Key{}, ErrScreenClosed
	case <-timer.C:
		return Key{}, ErrNoKey
	}
}

func (s *StdoutScreen) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printf("clear\n")
}

func (s *StdoutScreen) Fini() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		close(s.quit)
		logging.Info(logging.CatScreen, "stdout screen finalised")
	})
}

type stdoutWindow struct {
	owner   *StdoutScreen
	id      int
	rect    Rect
	deleted bool
}

func (w *stdoutWindow) String() string {
	return fmt.Sprintf("#%d(%d,%d %dx%d)", w.id, w.rect.Y, w.rect.X, w.rect.H, w.rect.W)
}

func (w *stdoutWindow) trace(format string, args ...any) error {
	w.owner.mu.Lock()
	defer w.owner.mu.Unlock()
	if w.deleted {
		return ErrWindowDeleted
	}
	return w.owner.printf("%s %s\n", fmt.Sprintf(format, args...), w)
}

func (w *stdoutWindow) Bounds() Rect {
	w.owner.mu.Lock()
	defer w.owner.mu.Unlock()
	return w.rect
}

func (w *stdoutWindow) Print(y, x int, text string, standout bool) error {
	w.owner.mu.Lock()
	defer w.owner.mu.Unlock()
	if w.deleted {
		return ErrWindowDeleted
	}
	styled := w.owner.out.String(strconv.Quote(sanitize(Unescape(text))))
	if standout {
		styled = styled.Reverse()
	}
	return w.owner.printf("print %s %d %d %t %s\n", w, y, x, standout, styled)
}

func (w *stdoutWindow) Erase() error   { return w.trace("erase") }
func (w *stdoutWindow) Refresh() error { return w.trace("refresh") }
func (w *stdoutWindow) Box() error     { return w.trace("box") }

func (w *stdoutWindow) Resize(rows, cols int) error {
	w.owner.mu.Lock()
	if !w.deleted {
		w.rect.H, w.rect.W = max(rows, 0), max(cols, 0)
	}
	w.owner.mu.Unlock()
	return w.trace("resize")
}

func (w *stdoutWindow) Move(y, x int) error {
	w.owner.mu.Lock()
	if !w.deleted {
		w.rect.Y, w.rect.X = y, x
	}
	w.owner.mu.Unlock()
	return w.trace("move")
}

func (w *stdoutWindow) SetBackground(theme Theme) error {
	return w.trace("bkgd fg=%s bg=%s", theme.FG, theme.BG)
}

func (w *stdoutWindow) Delete() error {
	if err := w.trace("delete"); err != nil {
		return err
	}
	w.owner.mu.Lock()
	w.deleted = true
	w.owner.mu.Unlock()
	return nil
}
