// Package colors parses the hex color strings used in text styles.
//
// Parsing never fails: a malformed string resolves to opaque white so a bad
// style value can degrade a slide but never abort rendering it.
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// White is returned for any string that does not parse.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Parse converts "#RRGGBB" or "#RRGGBBAA" (case-insensitive, leading '#'
// optional) into a non-premultiplied color. Six-digit forms are opaque.
// Anything else yields [White].
func Parse(s string) color.NRGBA {
	c, ok := parse(s)
	if !ok {
		return White
	}
	return c
}

// Valid reports whether s parses without falling back to white.
func Valid(s string) bool {
	_, ok := parse(s)
	return ok
}

// Hex formats c as "#RRGGBB", or "#RRGGBBAA" when c is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func parse(s string) (color.NRGBA, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}

	if len(hex) == 6 {
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}
