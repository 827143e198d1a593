// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/driver_tcell.go
// Summary: Screen implementation on top of tcell.
// Usage: Default backend when stdout is a terminal; tests wrap a simulation screen.

package texel

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texeltail/internal/logging"
)

// TcellScreen adapts a tcell.Screen to the Screen interface. Windows are
// rectangles drawn straight into tcell's back buffer; Refresh shows it.
type TcellScreen struct {
	mu     sync.Mutex
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
	once   sync.Once
	closed bool
}

// NewTcellScreen opens the controlling terminal.
func NewTcellScreen() (*TcellScreen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return NewTcellScreenFrom(screen), nil
}

// NewTcellScreenFrom wraps an already initialised tcell screen.
func NewTcellScreenFrom(screen tcell.Screen) *TcellScreen {
	defStyle := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset)
	screen.SetStyle(defStyle)
	screen.HideCursor()
	screen.Clear()

	s := &TcellScreen{
		screen: screen,
		events: make(chan tcell.Event, 32),
		quit:   make(chan struct{}),
	}
	go s.pollLoop()
	return s
}

func (s *TcellScreen) pollLoop() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case s.events <- ev:
		case <-s.quit:
			return
		}
	}
}

// Underlying exposes the wrapped tcell.Screen.
func (s *TcellScreen) Underlying() tcell.Screen {
	return s.screen
}

func (s *TcellScreen) Alloc(r Rect) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrScreenClosed
	}
	return &tcellWindow{owner: s, rect: r, theme: DefaultTheme()}, nil
}

func (s *TcellScreen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.screen.Size()
	return h, w
}

func (s *TcellScreen) ReadKey(timeout time.Duration) (Key, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-s.events:
			if key, ok := keyFromTcell(ev); ok {
				if key.Code == KeyResize {
					s.mu.Lock()
					s.screen.Sync()
					s.mu.Unlock()
				}
				return key, nil
			}
		case <-s.quit:
			return Key{}, ErrScreenClosed
		case <-timer.C:
			return Key{}, ErrNoKey
		}
	}
}

func (s *TcellScreen) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScreenClosed
	}
	s.screen.Clear()
	s.screen.Show()
	return nil
}

func (s *TcellScreen) Fini() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.quit)
		s.mu.Unlock()
		s.screen.Fini()
		logging.Info(logging.CatScreen, "tcell screen finalised")
	})
}

type tcellWindow struct {
	owner   *TcellScreen
	rect    Rect
	theme   Theme
	deleted bool
}

func (w *tcellWindow) lock() (tcell.Screen, error) {
	w.owner.mu.Lock()
	if w.owner.closed {
		w.owner.mu.Unlock()
		return nil, ErrScreenClosed
	}
	if w.deleted {
		w.owner.mu.Unlock()
		return nil, ErrWindowDeleted
	}
	return w.owner.screen, nil
}

func (w *tcellWindow) unlock() { w.owner.mu.Unlock() }

func (w *tcellWindow) Bounds() Rect {
	w.owner.mu.Lock()
	defer w.owner.mu.Unlock()
	return w.rect
}

func (w *tcellWindow) Print(y, x int, text string, standout bool) error {
	scr, err := w.lock()
	if err != nil {
		return err
	}
	defer w.unlock()
	if y < 0 || y >= w.rect.H || x < 0 || x >= w.rect.W {
		return nil
	}
	style := w.theme.style()
	if standout {
		style = w.theme.standoutStyle()
	}
	col := x
	for _, r := range sanitize(Unescape(text)) {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > w.rect.W {
			break
		}
		scr.SetContent(w.rect.X+col, w.rect.Y+y, r, nil, style)
		col += rw
	}
	return nil
}

func (w *tcellWindow) Erase() error {
	scr, err := w.lock()
	if err != nil {
		return err
	}
	defer w.unlock()
	style := w.theme.style()
	for row := 0; row < w.rect.H; row++ {
		for col := 0; col < w.rect.W; col++ {
			scr.SetContent(w.rect.X+col, w.rect.Y+row, ' ', nil, style)
		}
	}
	return nil
}

func (w *tcellWindow) Refresh() error {
	scr, err := w.lock()
	if err != nil {
		return err
	}
	defer w.unlock()
	scr.Show()
	return nil
}

func (w *tcellWindow) Resize(rows, cols int) error {
	if _, err := w.lock(); err != nil {
		return err
	}
	defer w.unlock()
	w.rect.H, w.rect.W = max(rows, 0), max(cols, 0)
	return nil
}

func (w *tcellWindow) Move(y, x int) error {
	if _, err := w.lock(); err != nil {
		return err
	}
	defer w.unlock()
	w.rect.Y, w.rect.X = y, x
	return nil
}

func (w *tcellWindow) Box() error {
	scr, err := w.lock()
	if err != nil {
		return err
	}
	defer w.unlock()
	r := w.rect
	if r.H < 2 || r.W < 2 {
		return nil
	}
	style := w.theme.style()
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W-1, r.Y+r.H-1
	for x := x0 + 1; x < x1; x++ {
		scr.SetContent(x, y0, tcell.RuneHLine, nil, style)
		scr.SetContent(x, y1, tcell.RuneHLine, nil, style)
	}
	for y := y0 + 1; y < y1; y++ {
		scr.SetContent(x0, y, tcell.RuneVLine, nil, style)
		scr.SetContent(x1, y, tcell.RuneVLine, nil, style)
	}
	scr.SetContent(x0, y0, tcell.RuneULCorner, nil, style)
	scr.SetContent(x1, y0, tcell.RuneURCorner, nil, style)
	scr.SetContent(x0, y1, tcell.RuneLLCorner, nil, style)
	scr.SetContent(x1, y1, tcell.RuneLRCorner, nil, style)
	return nil
}

func (w *tcellWindow) SetBackground(theme Theme) error {
	if _, err := w.lock(); err != nil {
		return err
	}
	defer w.unlock()
	w.theme = theme
	return nil
}

func (w *tcellWindow) Delete() error {
	if _, err := w.lock(); err != nil {
		return err
	}
	defer w.unlock()
	w.deleted = true
	return nil
}
