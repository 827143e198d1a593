// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/frame.go
// Summary: Bordered screen region carrying a pane's title and focus highlight.

package texel

// Frame is the outer, boxed region of a pane. The title sits on the top
// border one cell in from the corner and stands out while focused.
type Frame struct {
	Panel
}

// NewFrame allocates a boxed region for r.
func NewFrame(screen Screen, r Rect, theme Theme) (*Frame, error) {
	p, err := NewPanel(screen, r, theme)
	if err != nil {
		return nil, err
	}
	f := &Frame{Panel: *p}
	if err := f.win.Box(); err != nil {
		return nil, err
	}
	return f, nil
}

// SetTitle sets and draws the title.
func (f *Frame) SetTitle(title string) error {
	f.title = title
	return f.printTitle()
}

// SetFocus toggles the title highlight.
func (f *Frame) SetFocus(focus bool) error {
	f.focus = focus
	return f.printTitle()
}

// Resize moves the frame, redraws the border and the title.
func (f *Frame) Resize(r Rect, theme Theme) error {
	if err := f.place(r, theme); err != nil {
		return err
	}
	if err := f.win.Box(); err != nil {
		return err
	}
	return f.printTitle()
}

func (f *Frame) printTitle() error {
	if f.title != "" {
		// Keep the right-hand corner intact.
		title := clipRow(Escape(f.title), f.rect.W-2)
		if err := f.win.Print(0, 1, title, f.focus); err != nil {
			return err
		}
	}
	return f.win.Refresh()
}
