package compose

import (
	"image"

	"github.com/cristianadrielbraun/qrbadge/internal/geometry"
)

// LogoTarget is the pixel length of a logo's longer side for a raster of the
// given bounds, after clamping relSize into [lo, hi].
func LogoTarget(bounds image.Rectangle, relSize, lo, hi float64) int {
	short := min(bounds.Dx(), bounds.Dy())
	return max(1, geometry.RatioToPixels(geometry.Clamp(relSize, lo, hi), short))
}

// centered returns the top-left corner that centers size within bounds.
func centered(bounds image.Rectangle, size image.Point) image.Point {
	return image.Pt(
		bounds.Min.X+(bounds.Dx()-size.X)/2,
		bounds.Min.Y+(bounds.Dy()-size.Y)/2,
	)
}

// OverlayLogo pastes logo at the center of qr without clearing anything
// behind it; transparent logo pixels leave the modules visible. The logo's
// longer side becomes clamp(relSize, 0.05, 0.35) of qr's shorter edge. The
// result always has qr's dimensions.
func OverlayLogo(qr, logo image.Image, relSize float64) *image.RGBA {
	out := cloneRGBA(qr)
	target := LogoTarget(out.Bounds(), relSize, OverlayMinLogo, OverlayMaxLogo)
	lb := logo.Bounds()
	scaled := scaleLogo(logo, fitLongerSide(lb.Dx(), lb.Dy(), target))
	pasteOver(out, scaled, centered(out.Bounds(), scaled.Bounds().Size()))
	return out
}
