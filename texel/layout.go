// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/layout.go
// Summary: Grid tiling of the terminal into pane rectangles.
// Notes: Integer division everywhere; the last column and row of every
//   group absorb the remainder so the tiles cover the terminal exactly.

package texel

import "fmt"

// LayoutError reports a layout that cannot be tiled onto the terminal.
type LayoutError struct {
	Rows, Cols int
	Spec       []int
	Rotate     bool
	Reason     string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout %v on %dx%d terminal: %s", e.Spec, e.Cols, e.Rows, e.Reason)
}

// Compute splits an h-by-w terminal according to spec. Each entry of spec is
// the number of panes stacked in one column, or in one row when rotate is
// set. Zero entries count as one. Rectangles are returned column by column,
// top to bottom (row by row, left to right when rotated).
func Compute(h, w int, spec []int, rotate bool) ([]Rect, error) {
	fail := func(format string, args ...any) ([]Rect, error) {
		return nil, &LayoutError{Rows: h, Cols: w, Spec: spec, Rotate: rotate, Reason: fmt.Sprintf(format, args...)}
	}
	if len(spec) == 0 {
		return fail("no columns")
	}

	// major runs across groups, minor along each group.
	major, minor := w, h
	if rotate {
		major, minor = h, w
	}
	groups := len(spec)
	if major < groups {
		return fail("%d groups do not fit in %d cells", groups, major)
	}

	var rects []Rect
	groupSize := major / groups
	for i, n := range spec {
		n = max(n, 1)
		if minor < n {
			return fail("%d panes do not fit in %d cells", n, minor)
		}
		gStart := i * groupSize
		gLen := groupSize
		if i == groups-1 {
			gLen = major - gStart
		}
		cellSize := minor / n
		for j := 0; j < n; j++ {
			cStart := j * cellSize
			cLen := cellSize
			if j == n-1 {
				cLen = minor - cStart
			}
			if rotate {
				rects = append(rects, Rect{Y: gStart, X: cStart, H: gLen, W: cLen})
			} else {
				rects = append(rects, Rect{Y: cStart, X: gStart, H: cLen, W: gLen})
			}
		}
	}
	return rects, nil
}

// PaneCount returns how many panes spec describes.
func PaneCount(spec []int) int {
	total := 0
	for _, n := range spec {
		total += max(n, 1)
	}
	return total
}
