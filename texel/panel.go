// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/panel.go
// Summary: Borderless screen region that hosts a pane's text.

package texel

// Panel is a plain window region. Frame builds on it to add a border.
type Panel struct {
	win   Window
	rect  Rect
	title string
	focus bool
}

// NewPanel allocates a window for r and paints its background.
func NewPanel(screen Screen, r Rect, theme Theme) (*Panel, error) {
	win, err := screen.Alloc(r)
	if err != nil {
		return nil, err
	}
	if err := win.SetBackground(theme); err != nil {
		return nil, err
	}
	if err := win.Erase(); err != nil {
		return nil, err
	}
	return &Panel{win: win, rect: r}, nil
}

func (p *Panel) Rect() Rect     { return p.rect }
func (p *Panel) Rows() int      { return p.rect.H }
func (p *Panel) Cols() int      { return p.rect.W }
func (p *Panel) Title() string  { return p.title }
func (p *Panel) Focused() bool  { return p.focus }
func (p *Panel) Refresh() error { return p.win.Refresh() }
func (p *Panel) Erase() error   { return p.win.Erase() }

// SetTitle records the title; a panel has nowhere to draw it.
func (p *Panel) SetTitle(title string) error {
	p.title = title
	return nil
}

// SetFocus records the focus flag.
func (p *Panel) SetFocus(focus bool) error {
	p.focus = focus
	return nil
}

// Print writes one row of print-format text.
func (p *Panel) Print(y, x int, text string, standout bool) error {
	return p.win.Print(y, x, text, standout)
}

// Resize moves and resizes the region and repaints it.
func (p *Panel) Resize(r Rect, theme Theme) error {
	if err := p.place(r, theme); err != nil {
		return err
	}
	return p.win.Refresh()
}

func (p *Panel) place(r Rect, theme Theme) error {
	p.rect = r
	if err := p.win.Resize(r.H, r.W); err != nil {
		return err
	}
	if err := p.win.Move(r.Y, r.X); err != nil {
		return err
	}
	if err := p.win.SetBackground(theme); err != nil {
		return err
	}
	return p.win.Erase()
}

// Delete releases the window.
func (p *Panel) Delete() error {
	return p.win.Delete()
}
