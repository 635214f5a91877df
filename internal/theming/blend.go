// Copyright © 2026 Skylight contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/blend.go
// Summary: Color parsing and perceptual blending helpers.

package theming

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor resolves "#rrggbb" strings and W3C color names.
// Returns the parsed color and true, or ColorDefault and false.
func ParseColor(value string) (tcell.Color, bool) {
	if value == "" {
		return tcell.ColorDefault, false
	}
	if value[0] == '#' {
		c, err := colorful.Hex(value)
		if err != nil {
			return tcell.ColorDefault, false
		}
		return toTcell(c), true
	}
	if c, ok := tcell.ColorNames[strings.ToLower(value)]; ok {
		return c, true
	}
	return tcell.ColorDefault, false
}

// Dim pulls a color toward a background. Blending happens in HCL space
// so dimmed chrome keeps its hue instead of washing out to gray.
func Dim(c, toward tcell.Color, amount float64) tcell.Color {
	if amount <= 0 {
		return c
	}
	if amount >= 1 {
		return toward
	}
	return toTcell(toColorful(c).BlendHcl(toColorful(toward), amount))
}

// Lighten raises a color's luminance by the given fraction.
func Lighten(c tcell.Color, amount float64) tcell.Color {
	h, cc, l := toColorful(c).Hcl()
	l += amount
	if l > 1 {
		l = 1
	}
	if l < 0 {
		l = 0
	}
	return toTcell(colorful.Hcl(h, cc, l))
}

func toColorful(c tcell.Color) colorful.Color {
	r, g, b := c.TrueColor().RGB()
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
