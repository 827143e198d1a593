// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/layout.go
// Summary: Parsing of the -c layout string.

package config

// ParseLayout reads one hex digit per column. Characters that are not hex
// digits count as zero, which the layout engine treats as one pane.
func ParseLayout(s string) []int {
	if s == "" {
		return nil
	}
	out := make([]int, 0, len(s))
	for _, r := range s {
		out = append(out, hexValue(r))
	}
	return out
}

func hexValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}

// DefaultLayout puts every file in its own column.
func DefaultLayout(files int) []int {
	out := make([]int, files)
	for i := range out {
		out[i] = 1
	}
	return out
}
