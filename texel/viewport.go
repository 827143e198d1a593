// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/viewport.go
// Summary: One pane: a framed region, the file buffer behind it and a scroll offset.
// Usage: Created and resized by the Registry, repainted by scheduler tasks.

package texel

import (
	"errors"

	"github.com/framegrace/texeltail/internal/logging"
)

// RepaintOptions controls how a viewport renders its buffer.
type RepaintOptions struct {
	LineNumbers  bool // prefix each line with its 1-based number
	Fold         bool // wrap long lines instead of truncating them
	TrackChanges bool // highlight lines whose content changed
}

// Viewport pairs a LineBuffer with a framed screen region.
type Viewport struct {
	frame  *Frame
	panel  *Panel
	buffer *LineBuffer
	offset int
}

// NewViewport allocates the frame and the inner region for r.
func NewViewport(screen Screen, r Rect, theme Theme) (*Viewport, error) {
	frame, err := NewFrame(screen, r, theme)
	if err != nil {
		return nil, err
	}
	panel, err := NewPanel(screen, r.Inset(1), theme)
	if err != nil {
		return nil, err
	}
	v := &Viewport{frame: frame, panel: panel, buffer: NewLineBuffer()}
	if err := v.frame.Refresh(); err != nil {
		return nil, err
	}
	if err := v.panel.Refresh(); err != nil {
		return nil, err
	}
	return v, nil
}

// Rect returns the outer rectangle.
func (v *Viewport) Rect() Rect { return v.frame.Rect() }

// Inner returns the text rectangle.
func (v *Viewport) Inner() Rect { return v.panel.Rect() }

// Offset returns the first visible line index.
func (v *Viewport) Offset() int { return v.offset }

// Buffer exposes the underlying line buffer.
func (v *Viewport) Buffer() *LineBuffer { return v.buffer }

// Title returns the frame title.
func (v *Viewport) Title() string { return v.frame.Title() }

// Focused reports whether the frame is highlighted.
func (v *Viewport) Focused() bool { return v.frame.Focused() }

// IsDead reports whether no file is attached.
func (v *Viewport) IsDead() bool { return v.buffer.IsDead() }

// Resize places the viewport at r and scrolls back to the top.
func (v *Viewport) Resize(r Rect, theme Theme) error {
	if err := v.frame.Resize(r, theme); err != nil {
		return err
	}
	if err := v.panel.Resize(r.Inset(1), theme); err != nil {
		return err
	}
	v.offset = 0
	return nil
}

// Attach opens path in the buffer and shows it as the title.
func (v *Viewport) Attach(path string) error {
	if err := v.buffer.Attach(path); err != nil {
		return err
	}
	if err := v.frame.SetTitle(path); err != nil {
		return err
	}
	if err := v.panel.SetTitle(path); err != nil {
		return err
	}
	logging.Info(logging.CatPane, "attached",
		"path", path, "frame", v.frame.Rect(), "inner", v.panel.Rect(), "lines", v.buffer.LineCount())
	return nil
}

// Update rescans the buffer, reopening it first if the path was rotated.
func (v *Viewport) Update() error {
	if v.buffer.IsDead() {
		return nil
	}
	if rotated, err := v.buffer.Reopen(); err != nil {
		logging.Debug(logging.CatBuffer, "reopen skipped", "path", v.buffer.Path(), "error", err)
	} else if rotated {
		logging.Info(logging.CatBuffer, "reopened rotated file", "path", v.buffer.Path())
		return nil
	}
	if err := v.buffer.Rescan(); err != nil {
		return err
	}
	logging.Debug(logging.CatBuffer, "rescanned", "path", v.buffer.Path(), "lines", v.buffer.LineCount())
	return nil
}

// SetFocus highlights or un-highlights the frame title.
func (v *Viewport) SetFocus(focus bool) error {
	if err := v.frame.SetFocus(focus); err != nil {
		return err
	}
	return v.panel.SetFocus(focus)
}

// ScrollHome shows the first line.
func (v *Viewport) ScrollHome() { v.offset = 0 }

// ScrollEnd scrolls past the last line.
func (v *Viewport) ScrollEnd() { v.offset = v.buffer.LineCount() }

// ScrollBy moves the offset by delta, saturating at 0 and the line count.
func (v *Viewport) ScrollBy(delta int) {
	v.offset = clampOffset(v.offset+delta, v.buffer.LineCount())
}

func clampOffset(offset, lines int) int {
	if offset < 0 {
		return 0
	}
	if offset > lines {
		return lines
	}
	return offset
}

// Repaint redraws the visible window of the file. Reading always restarts
// from the first line so no seek table is needed.
func (v *Viewport) Repaint(opts RepaintOptions) error {
	if v.buffer.IsDead() {
		return nil
	}
	rows, cols := v.panel.Rows(), v.panel.Cols()
	if err := v.panel.Erase(); err != nil {
		return err
	}
	if err := v.buffer.Rewind(); err != nil {
		return err
	}

	y := 0
	for y < rows && cols > 0 {
		line, err := v.buffer.ReadLine(opts.LineNumbers, opts.TrackChanges)
		if errors.Is(err, ErrEndOfBuffer) {
			break
		}
		if err != nil {
			return err
		}
		if line.Index < v.offset {
			continue
		}
		if !opts.Fold {
			if err := v.panel.Print(y, 0, clipRow(line.Text, cols), line.Changed); err != nil {
				return err
			}
			y++
			continue
		}
		for _, row := range foldRows(line.Text, cols) {
			if y >= rows {
				break
			}
			if err := v.panel.Print(y, 0, row, line.Changed); err != nil {
				return err
			}
			y++
		}
	}

	if err := v.panel.Refresh(); err != nil {
		return err
	}
	return v.buffer.Rewind()
}

// Delete releases both screen regions and the file.
func (v *Viewport) Delete() error {
	err := errors.Join(v.panel.Delete(), v.frame.Delete())
	return errors.Join(err, v.buffer.Close())
}
