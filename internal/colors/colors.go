// Package colors parses the hex color parameters accepted by the HTTP API,
// the CLI and the config file.
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Transparent is returned for the "transparent" keyword.
var Transparent = color.RGBA{0, 0, 0, 0}

// Parse parses #RGB, #RRGGBB, #RRGGBBAA (leading # optional) or the keyword
// "transparent".
func Parse(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "transparent" {
		return Transparent, nil
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 && len(v) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(v) == 6 {
		return color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, nil
	}
	// Non-premultiplied input; color.RGBA wants premultiplied channels.
	nc := color.NRGBA{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}
	return color.RGBAModel.Convert(nc).(color.RGBA), nil
}

// ParseOr returns def when s is empty or malformed.
func ParseOr(s string, def color.RGBA) color.RGBA {
	if strings.TrimSpace(s) == "" {
		return def
	}
	c, err := Parse(s)
	if err != nil {
		return def
	}
	return c
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X%02X", nc.R, nc.G, nc.B, nc.A)
}
