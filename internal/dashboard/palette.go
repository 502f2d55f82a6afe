package dashboard

import (
	"fmt"

	"infinite-experiment/skyboard/internal/constants"
)

// Color is an RGB palette entry
type Color struct {
	R, G, B uint8
}

// RGBA renders the color for Chart.js with the given opacity
func (c Color) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, alpha)
}

var palettes = map[constants.Theme][]Color{
	constants.ThemeLight: {
		{54, 162, 235},
		{255, 99, 132},
		{255, 206, 86},
		{75, 192, 192},
		{153, 102, 255},
		{255, 159, 64},
		{201, 203, 207},
	},
	constants.ThemeDark: {
		{96, 165, 250},
		{248, 113, 113},
		{250, 204, 21},
		{52, 211, 153},
		{192, 132, 252},
		{251, 146, 60},
		{148, 163, 184},
	},
	constants.ThemeHighContrast: {
		{0, 114, 178},
		{213, 94, 0},
		{240, 228, 66},
		{0, 158, 115},
		{204, 121, 167},
		{86, 180, 233},
		{230, 159, 0},
	},
}

// Palette returns the theme's colors, falling back to the light theme
func Palette(theme constants.Theme) []Color {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[constants.ThemeLight]
}

// PaletteFor assigns color i to label i, wrapping when there are more labels than colors
func PaletteFor(theme constants.Theme, n int) []Color {
	p := Palette(theme)
	out := make([]Color, n)
	for i := range out {
		out[i] = p[i%len(p)]
	}
	return out
}
