package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HSLColor is an HSL color representation
type HSLColor struct {
	Hue        float64 // 0-360
	Saturation float64 // 0-1
	Lightness  float64 // 0-1
}

// HexToHSL parses a hex color string (e.g. "#4a90e2") into HSL. Malformed
// input falls back to black rather than failing, since colors are purely
// presentational.
func HexToHSL(hex string) HSLColor {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return HSLColor{}
	}

	parse := func(s string) float64 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0
		}
		return float64(v) / 255
	}

	r := parse(hex[0:2])
	g := parse(hex[2:4])
	b := parse(hex[4:6])

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	h := 0.0
	s := 0.0
	l := (max + min) / 2

	if delta != 0 {
		if l > 0.5 {
			s = delta / (2 - max - min)
		} else {
			s = delta / (max + min)
		}

		switch max {
		case r:
			h = (g - b) / delta
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/delta + 2
		case b:
			h = (r-g)/delta + 4
		}
		h /= 6
	}

	return HSLColor{
		Hue:        math.Round(h * 360),
		Saturation: s,
		Lightness:  l,
	}
}

// HSLToHex converts an HSL color to a hex string
func HSLToHex(hsl HSLColor) string {
	h := hsl.Hue / 360
	s := hsl.Saturation
	l := hsl.Lightness

	var r, g, b float64

	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r = hueToRGB(p, q, h+1.0/3)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3)
	}

	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(r*255)),
		int(math.Round(g*255)),
		int(math.Round(b*255)))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

// ApplyColorShift rotates the current color in HSL space by the delta's hue
// rotation, adjusts saturation, and lets temperature nudge lightness. Hue
// wraps at 360; saturation and lightness are clamped. The blend is
// deterministic: the same input color and delta always produce the same
// output.
func ApplyColorShift(currentColor string, d RegionDelta) string {
	hsl := HexToHSL(currentColor)

	hsl.Hue = math.Mod(hsl.Hue+d.HueRotationDegrees+360, 360)
	hsl.Saturation = clamp01(hsl.Saturation + d.SaturationDelta)
	// Warmer regions brighten slightly
	hsl.Lightness = clamp01(hsl.Lightness + d.TemperatureDelta*0.1)

	return HSLToHex(hsl)
}
