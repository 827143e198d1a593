// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/theme.go
// Summary: Colour pair and standout attribute shared by every pane region.

package texel

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Color is one of the eight basic terminal colours, or ColorDefault.
type Color int16

const (
	ColorDefault Color = -1
	ColorBlack   Color = 0
	ColorRed     Color = 1
	ColorGreen   Color = 2
	ColorYellow  Color = 3
	ColorBlue    Color = 4
	ColorMagenta Color = 5
	ColorCyan    Color = 6
	ColorWhite   Color = 7
)

var colorNames = map[string]Color{
	"black":   ColorBlack,
	"red":     ColorRed,
	"green":   ColorGreen,
	"yellow":  ColorYellow,
	"blue":    ColorBlue,
	"magenta": ColorMagenta,
	"cyan":    ColorCyan,
	"white":   ColorWhite,
}

// ParseColor maps a colour name to a Color. Unknown names yield ColorDefault.
func ParseColor(name string) Color {
	if c, ok := colorNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return ColorDefault
}

func (c Color) String() string {
	for n, v := range colorNames {
		if v == c {
			return n
		}
	}
	return "default"
}

func (c Color) tcell() tcell.Color {
	if c < 0 || c > ColorWhite {
		return tcell.ColorReset
	}
	return tcell.PaletteColor(int(c))
}

// Attr is a set of text attributes used for highlighted output.
type Attr uint8

const (
	AttrReverse Attr = 1 << iota
	AttrBold
)

// StandoutForTerm picks the highlight attribute for a TERM value. screen and
// tmux render standout as plain reverse video.
func StandoutForTerm(term string) Attr {
	if strings.HasPrefix(term, "screen") || strings.HasPrefix(term, "tmux") {
		return AttrReverse
	}
	return AttrReverse | AttrBold
}

// Theme is the colour pair plus the highlight attribute applied to regions.
type Theme struct {
	FG, BG   Color
	Standout Attr
}

// DefaultTheme uses terminal default colours and reverse+bold highlight.
func DefaultTheme() Theme {
	return Theme{FG: ColorDefault, BG: ColorDefault, Standout: AttrReverse | AttrBold}
}

func (t Theme) style() tcell.Style {
	return tcell.StyleDefault.Foreground(t.FG.tcell()).Background(t.BG.tcell())
}

func (t Theme) standoutStyle() tcell.Style {
	st := t.style()
	if t.Standout&AttrReverse != 0 {
		st = st.Reverse(true)
	}
	if t.Standout&AttrBold != 0 {
		st = st.Bold(true)
	}
	return st
}
