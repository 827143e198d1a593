// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/cells.go
// Summary: Text helpers turning tailed lines into printable cell rows.
// Usage: Viewport uses them to truncate or fold; drivers use Unescape.

package texel

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wrap"
)

const tabWidth = 8

// Escape converts plain text to print-format by doubling every '%'.
func Escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// Unescape converts print-format text back to plain text. A lone '%' that
// is not part of a "%%" pair is kept as is.
func Unescape(s string) string {
	if !strings.Contains(s, "%%") {
		return s
	}
	return strings.ReplaceAll(s, "%%", "%")
}

// sanitize strips terminal escape sequences, expands tabs and replaces the
// remaining control characters so every rune occupies predictable cells.
func sanitize(s string) string {
	s = ansi.Strip(s)
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch {
		case r == '\t':
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case r < 0x20 || r == 0x7f:
			b.WriteRune('?')
			col++
		default:
			b.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}
	return b.String()
}

// displayWidth returns the number of cells plain text occupies.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// clipRow truncates print-format text to width cells, keeping print-format.
func clipRow(text string, width int) string {
	if width <= 0 {
		return ""
	}
	plain := sanitize(Unescape(text))
	if displayWidth(plain) <= width {
		return Escape(plain)
	}
	return Escape(runewidth.Truncate(plain, width, ""))
}

// foldRows hard-wraps print-format text into rows of at most width cells.
// An empty line still occupies one row.
func foldRows(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	plain := sanitize(Unescape(text))
	if displayWidth(plain) <= width {
		return []string{Escape(plain)}
	}
	w := wrap.NewWriter(width)
	w.PreserveSpace = true
	w.TabWidth = tabWidth
	_, _ = w.Write([]byte(plain))
	rows := strings.Split(w.String(), "\n")
	for i := range rows {
		rows[i] = Escape(rows[i])
	}
	return rows
}
