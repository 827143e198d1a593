// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/keys.go
// Summary: Backend-neutral key codes and the tcell key translation.

package texel

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// KeyCode identifies a non-printable key, or KeyRune for printable input.
type KeyCode int

const (
	KeyNone KeyCode = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPgUp
	KeyPgDn
	KeyHome
	KeyEnd
	KeyResize // terminal size changed
	KeyCtrlL
	KeyCtrlB
	KeyCtrlF
	KeyCtrlU
	KeyCtrlD
	KeyCtrlC
	KeyEsc
	KeyOther
)

// Key is one decoded input event.
type Key struct {
	Code KeyCode
	Rune rune
}

// RuneKey builds a printable key.
func RuneKey(r rune) Key { return Key{Code: KeyRune, Rune: r} }

func (k Key) String() string {
	if k.Code == KeyRune {
		return fmt.Sprintf("%q", k.Rune)
	}
	switch k.Code {
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyPgUp:
		return "PgUp"
	case KeyPgDn:
		return "PgDn"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyResize:
		return "Resize"
	case KeyCtrlL:
		return "Ctrl-L"
	case KeyCtrlB:
		return "Ctrl-B"
	case KeyCtrlF:
		return "Ctrl-F"
	case KeyCtrlU:
		return "Ctrl-U"
	case KeyCtrlD:
		return "Ctrl-D"
	case KeyCtrlC:
		return "Ctrl-C"
	case KeyEsc:
		return "Esc"
	case KeyNone:
		return "None"
	}
	return "Other"
}

// keyFromTcell translates a tcell event. ok is false for events that carry
// no input for the dashboard (mouse, paste, interrupts).
func keyFromTcell(ev tcell.Event) (Key, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return Key{Code: KeyResize}, true
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyRune:
			return RuneKey(ev.Rune()), true
		case tcell.KeyUp:
			return Key{Code: KeyUp}, true
		case tcell.KeyDown:
			return Key{Code: KeyDown}, true
		case tcell.KeyLeft:
			return Key{Code: KeyLeft}, true
		case tcell.KeyRight:
			return Key{Code: KeyRight}, true
		case tcell.KeyPgUp:
			return Key{Code: KeyPgUp}, true
		case tcell.KeyPgDn:
			return Key{Code: KeyPgDn}, true
		case tcell.KeyHome:
			return Key{Code: KeyHome}, true
		case tcell.KeyEnd:
			return Key{Code: KeyEnd}, true
		case tcell.KeyCtrlL:
			return Key{Code: KeyCtrlL}, true
		case tcell.KeyCtrlB:
			return Key{Code: KeyCtrlB}, true
		case tcell.KeyCtrlF:
			return Key{Code: KeyCtrlF}, true
		case tcell.KeyCtrlU:
			return Key{Code: KeyCtrlU}, true
		case tcell.KeyCtrlD:
			return Key{Code: KeyCtrlD}, true
		case tcell.KeyCtrlC:
			return Key{Code: KeyCtrlC}, true
		case tcell.KeyEscape:
			return Key{Code: KeyEsc}, true
		}
		return Key{Code: KeyOther}, true
	}
	return Key{}, false
}
