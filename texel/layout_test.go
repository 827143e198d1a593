// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/layout_test.go
// Summary: Grid tiling coverage and error cases.

package texel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestComputeTwelve(t *testing.T) {
	rects, err := Compute(40, 120, []int{1, 2}, false)
	require.NoError(t, err)
	require.Equal(t, []Rect{
		{Y: 0, X: 0, H: 40, W: 60},
		{Y: 0, X: 60, H: 20, W: 60},
		{Y: 20, X: 60, H: 20, W: 60},
	}, rects)
}

func TestComputeRotated(t *testing.T) {
	rects, err := Compute(40, 120, []int{1, 2}, true)
	require.NoError(t, err)
	require.Equal(t, []Rect{
		{Y: 0, X: 0, H: 20, W: 120},
		{Y: 20, X: 0, H: 20, W: 60},
		{Y: 20, X: 60, H: 20, W: 60},
	}, rects)
}

func TestComputeRemainderGoesLast(t *testing.T) {
	rects, err := Compute(10, 10, []int{1, 1, 1}, false)
	require.NoError(t, err)
	require.Len(t, rects, 3)
	assert.Equal(t, 3, rects[0].W)
	assert.Equal(t, 3, rects[1].W)
	assert.Equal(t, 4, rects[2].W)
	assert.Equal(t, 6, rects[2].X)

	rects, err = Compute(10, 10, []int{3}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 4}, []int{rects[0].H, rects[1].H, rects[2].H})
}

func TestComputeZeroCountsAsOne(t *testing.T) {
	rects, err := Compute(10, 10, []int{0, 2}, false)
	require.NoError(t, err)
	require.Len(t, rects, 3)
	assert.Equal(t, 3, PaneCount([]int{0, 2}))
}

func TestComputeErrors(t *testing.T) {
	cases := []struct {
		name   string
		h, w   int
		spec   []int
		rotate bool
	}{
		{"empty", 10, 10, nil, false},
		{"too many columns", 10, 2, []int{1, 1, 1}, false},
		{"too many rows", 2, 10, []int{3}, false},
		{"too many rotated rows", 2, 10, []int{1, 1, 1}, true},
		{"zero terminal", 0, 0, []int{1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rects, err := Compute(tc.h, tc.w, tc.spec, tc.rotate)
			require.Nil(t, rects)
			var lerr *LayoutError
			require.True(t, errors.As(err, &lerr))
			assert.NotEmpty(t, lerr.Error())
		})
	}
}

func TestComputeCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.IntRange(1, 80).Draw(t, "h")
		w := rapid.IntRange(1, 200).Draw(t, "w")
		spec := rapid.SliceOfN(rapid.IntRange(0, 15), 1, 8).Draw(t, "spec")
		rotate := rapid.Bool().Draw(t, "rotate")

		rects, err := Compute(h, w, spec, rotate)
		if err != nil {
			var lerr *LayoutError
			if !errors.As(err, &lerr) {
				t.Fatalf("unexpected error type %T", err)
			}
			return
		}
		if len(rects) != PaneCount(spec) {
			t.Fatalf("got %d rects for spec %v", len(rects), spec)
		}
		area := 0
		for i, r := range rects {
			if r.H < 1 || r.W < 1 {
				t.Fatalf("empty rect %+v", r)
			}
			if r.Y < 0 || r.X < 0 || r.Y+r.H > h || r.X+r.W > w {
				t.Fatalf("rect %+v outside %dx%d", r, h, w)
			}
			area += r.Area()
			for _, o := range rects[i+1:] {
				if r.Overlaps(o) {
					t.Fatalf("rects %+v and %+v overlap", r, o)
				}
			}
		}
		if area != h*w {
			t.Fatalf("area %d, want %d", area, h*w)
		}
	})
}
