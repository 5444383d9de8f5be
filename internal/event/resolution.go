// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package event

// Resolution labels reported in the resolution field.
const (
	Resolution4K      = "4K"
	Resolution2K      = "2K"
	Resolution1080p   = "1080p (Full HD)"
	Resolution720p    = "720p (HD)"
	Resolution480p    = "480p (SD)"
	Resolution360p    = "360p"
	Resolution240p    = "240p"
	ResolutionUnknown = "UNKNOWN"
	ResolutionLow     = "Low"
)

// resolutionSteps is evaluated top-down; the first threshold the height
// reaches wins.
var resolutionSteps = []struct {
	minHeight int
	label     string
}{
	{2160, Resolution4K},
	{1440, Resolution2K},
	{1080, Resolution1080p},
	{720, Resolution720p},
	{480, Resolution480p},
	{360, Resolution360p},
	{240, Resolution240p},
}

// ResolutionLabel maps a video height in pixels to a human readable label.
func ResolutionLabel(height int) string {
	for _, step := range resolutionSteps {
		if height >= step.minHeight {
			return step.label
		}
	}
	if height == 0 {
		return ResolutionUnknown
	}
	return ResolutionLow
}
