// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionLabel(t *testing.T) {
	tests := []struct {
		height int
		want   string
	}{
		{4320, Resolution4K},
		{2160, Resolution4K},
		{2159, Resolution2K},
		{1440, Resolution2K},
		{1439, Resolution1080p},
		{1080, Resolution1080p},
		{1079, Resolution720p},
		{720, Resolution720p},
		{719, Resolution480p},
		{480, Resolution480p},
		{479, Resolution360p},
		{360, Resolution360p},
		{359, Resolution240p},
		{240, Resolution240p},
		{239, ResolutionLow},
		{100, ResolutionLow},
		{1, ResolutionLow},
		{0, ResolutionUnknown},
		{-1, ResolutionLow},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, ResolutionLabel(tt.height), "height %d", tt.height)
	}
}

func TestResolutionLabel_MonotonicInHeight(t *testing.T) {
	rank := map[string]int{
		ResolutionLow:   0,
		Resolution240p:  1,
		Resolution360p:  2,
		Resolution480p:  3,
		Resolution720p:  4,
		Resolution1080p: 5,
		Resolution2K:    6,
		Resolution4K:    7,
	}
	prev := -1
	for h := 1; h <= 5000; h++ {
		r, ok := rank[ResolutionLabel(h)]
		if !ok {
			t.Fatalf("height %d produced unexpected label %q", h, ResolutionLabel(h))
		}
		if r < prev {
			t.Fatalf("label rank decreased at height %d", h)
		}
		prev = r
	}
}
