// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Configuration keys and their default values.

package config

import "github.com/spf13/viper"

// Keys shared by flags, the config file and TEXELTAIL_* environment variables.
const (
	KeyLayout   = "layout"
	KeyFG       = "fg"
	KeyBG       = "bg"
	KeyInterval = "interval"
	KeyMillis   = "millis"
	KeyNumbers  = "numbers"
	KeyFold     = "fold"
	KeyRotate   = "rotate"
	KeyNoBlink  = "noblink"
	KeyUseDelay = "usedelay"
	KeyDebug    = "debug"
)

// DefaultInterval is the repaint period in seconds.
const DefaultInterval = 1

func applyDefaults(v *viper.Viper) {
	v.SetDefault(KeyLayout, "")
	v.SetDefault(KeyFG, "")
	v.SetDefault(KeyBG, "")
	v.SetDefault(KeyInterval, DefaultInterval)
	v.SetDefault(KeyMillis, false)
	v.SetDefault(KeyNumbers, false)
	v.SetDefault(KeyFold, false)
	v.SetDefault(KeyRotate, false)
	v.SetDefault(KeyNoBlink, false)
	v.SetDefault(KeyUseDelay, false)
	v.SetDefault(KeyDebug, false)
}
