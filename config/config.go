// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Run options for texeltail, layered defaults < file < env < flags.
// Usage: cmd/texeltail binds its flags with New and builds Options with Load.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/framegrace/texeltail/texel"
)

// ErrNoFiles is returned when no file to tail was given.
var ErrNoFiles = errors.New("at least one file is required")

// ConfigError reports an unusable option value.
type ConfigError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Reason)
}

// Options is everything a run needs besides the terminal.
type Options struct {
	Files       []string
	Layout      []int // panes per column (per row when Rotate)
	Rotate      bool
	FG, BG      texel.Color
	Interval    time.Duration
	LineNumbers bool
	Fold        bool
	NoBlink     bool
	UseDelay    bool
	Debug       bool
	ConfigFile  string // config file actually read, if any
}

// New returns a viper instance with defaults, the optional config file,
// TEXELTAIL_* environment variables and flags layered in that order. An
// explicit configFile must exist; the default one may be missing.
func New(flags *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetEnvPrefix("TEXELTAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range []string{KeyLayout, KeyFG, KeyBG, KeyInterval, KeyMillis, KeyNumbers,
			KeyFold, KeyRotate, KeyNoBlink, KeyUseDelay, KeyDebug} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if configFile == "" {
		path, err := DefaultConfigFile()
		if err != nil {
			return v, nil
		}
		// The default file is optional; only a file that exists is read.
		if _, err := os.Stat(path); err != nil {
			return v, nil
		}
		configFile = path
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configFile, err)
	}
	return v, nil
}

// Load turns the layered settings and the positional file arguments into
// Options.
func Load(v *viper.Viper, files []string) (*Options, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	interval, err := Interval(v.GetInt(KeyInterval), v.GetBool(KeyMillis))
	if err != nil {
		return nil, err
	}
	layout := ParseLayout(v.GetString(KeyLayout))
	if len(layout) == 0 {
		layout = DefaultLayout(len(files))
	}
	return &Options{
		Files:       append([]string(nil), files...),
		Layout:      layout,
		Rotate:      v.GetBool(KeyRotate),
		FG:          texel.ParseColor(v.GetString(KeyFG)),
		BG:          texel.ParseColor(v.GetString(KeyBG)),
		Interval:    interval,
		LineNumbers: v.GetBool(KeyNumbers),
		Fold:        v.GetBool(KeyFold),
		NoBlink:     v.GetBool(KeyNoBlink),
		UseDelay:    v.GetBool(KeyUseDelay),
		Debug:       v.GetBool(KeyDebug),
		ConfigFile:  v.ConfigFileUsed(),
	}, nil
}

// Interval converts the -t value to a duration. With millis set the value
// counts milliseconds.
func Interval(value int, millis bool) (time.Duration, error) {
	if value <= 0 {
		return 0, &ConfigError{Key: KeyInterval, Value: fmt.Sprint(value), Reason: "must be positive"}
	}
	if millis {
		sec, ms := value/1000, value%1000
		return time.Duration(sec)*time.Second + time.Duration(ms)*time.Millisecond, nil
	}
	return time.Duration(value) * time.Second, nil
}

// Theme returns the colours with the highlight suited to term.
func (o *Options) Theme(term string) texel.Theme {
	return texel.Theme{FG: o.FG, BG: o.BG, Standout: texel.StandoutForTerm(term)}
}

// Repaint returns the per-pane rendering options.
func (o *Options) Repaint() texel.RepaintOptions {
	return texel.RepaintOptions{
		LineNumbers:  o.LineNumbers,
		Fold:         o.Fold,
		TrackChanges: !o.NoBlink,
	}
}

// Scheduler returns the background task options.
func (o *Options) Scheduler() texel.SchedulerOptions {
	return texel.SchedulerOptions{
		Interval: o.Interval,
		UseDelay: o.UseDelay,
		Repaint:  o.Repaint(),
	}
}
