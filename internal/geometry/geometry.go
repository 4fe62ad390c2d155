// Package geometry holds the small set of shape helpers the compositors are
// built from: saturating clamps, ratio-to-pixel conversion and alpha masks for
// rounded rectangles and rings.
package geometry

import (
	"image"

	"github.com/fogleman/gg"
)

// Clamp saturates v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt saturates v into [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RatioToPixels converts a relative size into whole pixels of base,
// truncating toward zero. Negative inputs yield 0.
func RatioToPixels(ratio float64, base int) int {
	px := int(ratio * float64(base))
	if px < 0 {
		return 0
	}
	return px
}

// MaxRadius returns the largest corner radius a w×h rectangle can carry.
func MaxRadius(w, h int) int {
	return min(w, h) / 2
}

// RoundedRectMask returns a w×h alpha mask that is opaque inside a rectangle
// with corners rounded by radius pixels and transparent outside. The radius is
// capped at half the shorter side.
func RoundedRectMask(w, h, radius int) *image.Alpha {
	if w <= 0 || h <= 0 {
		return image.NewAlpha(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	dc := gg.NewContext(w, h)
	fillRoundedRect(dc, 0, 0, w, h, radius)
	return dc.AsMask()
}

// RingMask returns the closed loop between an outer rounded rectangle of
// outerRadius and a concentric inner one inset by inset on every side. The
// inner radius is outerRadius-inset floored at zero, which keeps the ring's
// thickness constant around the corners.
func RingMask(w, h, inset, outerRadius int) *image.Alpha {
	outer := RoundedRectMask(w, h, outerRadius)
	if inset <= 0 {
		return image.NewAlpha(outer.Bounds())
	}
	iw, ih := w-2*inset, h-2*inset
	if iw <= 0 || ih <= 0 {
		return outer
	}
	dc := gg.NewContext(w, h)
	fillRoundedRect(dc, inset, inset, iw, ih, max(0, outerRadius-inset))
	return Subtract(outer, dc.AsMask())
}

// Subtract returns a-b per pixel, saturating at zero. Both masks must share
// bounds.
func Subtract(a, b *image.Alpha) *image.Alpha {
	out := image.NewAlpha(a.Bounds())
	for i, v := range a.Pix {
		var s uint8
		if i < len(b.Pix) {
			s = b.Pix[i]
		}
		if v > s {
			out.Pix[i] = v - s
		}
	}
	return out
}

// MaskArea is the coverage of m in whole pixels.
func MaskArea(m *image.Alpha) float64 {
	var sum int
	for _, v := range m.Pix {
		sum += int(v)
	}
	return float64(sum) / 255
}

// ClipBox clamps r into bounds and guarantees a non-empty result as long as
// bounds itself is non-empty.
func ClipBox(r, bounds image.Rectangle) image.Rectangle {
	r = r.Canon()
	out := image.Rect(
		ClampInt(r.Min.X, bounds.Min.X, bounds.Max.X),
		ClampInt(r.Min.Y, bounds.Min.Y, bounds.Max.Y),
		ClampInt(r.Max.X, bounds.Min.X, bounds.Max.X),
		ClampInt(r.Max.Y, bounds.Min.Y, bounds.Max.Y),
	)
	if bounds.Empty() {
		return out
	}
	if out.Min.X >= bounds.Max.X {
		out.Min.X = bounds.Max.X - 1
	}
	if out.Min.Y >= bounds.Max.Y {
		out.Min.Y = bounds.Max.Y - 1
	}
	if out.Max.X <= out.Min.X {
		out.Max.X = out.Min.X + 1
	}
	if out.Max.Y <= out.Min.Y {
		out.Max.Y = out.Min.Y + 1
	}
	return out
}

func fillRoundedRect(dc *gg.Context, x, y, w, h, radius int) {
	r := ClampInt(radius, 0, MaxRadius(w, h))
	if r == 0 {
		dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	} else {
		dc.DrawRoundedRectangle(float64(x), float64(y), float64(w), float64(h), float64(r))
	}
	dc.SetRGBA(0, 0, 0, 1)
	dc.Fill()
}
