package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// cloneRGBA copies img into a fresh RGBA buffer anchored at (0,0).
func cloneRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// fillMask resets the pixels under mask (placed with its origin at at) toward
// c in proportion to the mask's coverage. Unlike a plain Over this also works
// for translucent fills: full coverage means exactly c. Pixels falling outside
// dst are skipped.
func fillMask(dst *image.RGBA, at image.Point, mask *image.Alpha, c color.RGBA) {
	mb := mask.Bounds()
	area := mb.Add(at.Sub(mb.Min)).Intersect(dst.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			m := uint32(mask.AlphaAt(x-at.X+mb.Min.X, y-at.Y+mb.Min.Y).A)
			if m == 0 {
				continue
			}
			if m == 255 {
				dst.SetRGBA(x, y, c)
				continue
			}
			d := dst.RGBAAt(x, y)
			dst.SetRGBA(x, y, color.RGBA{
				R: lerp8(d.R, c.R, m),
				G: lerp8(d.G, c.G, m),
				B: lerp8(d.B, c.B, m),
				A: lerp8(d.A, c.A, m),
			})
		}
	}
}

func lerp8(a, b uint8, m uint32) uint8 {
	return uint8((uint32(a)*(255-m) + uint32(b)*m + 127) / 255)
}

// fitLongerSide returns the size of a w×h box scaled so its longer side is target.
func fitLongerSide(w, h, target int) image.Point {
	target = max(1, target)
	if w <= 0 || h <= 0 {
		return image.Pt(target, target)
	}
	if w >= h {
		return image.Pt(target, max(1, (h*target+w/2)/w))
	}
	return image.Pt(max(1, (w*target+h/2)/h), target)
}

// scaleLogo resamples logo with Lanczos to size.
func scaleLogo(logo image.Image, size image.Point) *image.NRGBA {
	return imaging.Resize(logo, size.X, size.Y, imaging.Lanczos)
}

// pasteOver draws src at pt through its own alpha.
func pasteOver(dst *image.RGBA, src image.Image, pt image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: pt, Max: pt.Add(b.Size())}, src, b.Min, draw.Over)
}
