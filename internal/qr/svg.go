package qr

import (
	"fmt"
	"image/color"
	"strings"
)

// Vector renders payload as a standalone SVG document whose user space
// matches the raster output: (modules + 2×quiet zone) × scale units per side.
// Dark modules are merged into horizontal runs of a single path.
func (g *Generator) Vector(payload string, opts Options) ([]byte, error) {
	opts = opts.Normalize()
	bitmap, err := g.Modules(payload, opts.Level)
	if err != nil {
		return nil, err
	}

	n := len(bitmap)
	scale := opts.Scale
	offset := opts.QuietZone * scale
	totalSize := (n + 2*opts.QuietZone) * scale

	var svgBuilder strings.Builder
	svgBuilder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	svgBuilder.WriteString("\n")
	fmt.Fprintf(&svgBuilder, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`,
		totalSize, totalSize, totalSize, totalSize)

	if opts.Light.A > 0 {
		fmt.Fprintf(&svgBuilder, `<rect width="%d" height="%d" fill="%s"%s/>`,
			totalSize, totalSize, svgColor(opts.Light), svgOpacity(opts.Light))
	}

	fmt.Fprintf(&svgBuilder, `<path fill="%s"%s d="`, svgColor(opts.Dark), svgOpacity(opts.Dark))
	for y := 0; y < n; y++ {
		for x := 0; x < n; {
			if !bitmap[y][x] {
				x++
				continue
			}
			run := 0
			for x+run < n && bitmap[y][x+run] {
				run++
			}
			fmt.Fprintf(&svgBuilder, "M%d %dh%dv%dh-%dz",
				offset+x*scale, offset+y*scale, run*scale, scale, run*scale)
			x += run
		}
	}
	svgBuilder.WriteString(`"/>`)
	svgBuilder.WriteString("</svg>\n")
	return []byte(svgBuilder.String()), nil
}

func svgColor(c color.RGBA) string {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", nc.R, nc.G, nc.B)
}

func svgOpacity(c color.RGBA) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(` fill-opacity="%.3f"`, float64(c.A)/255)
}
