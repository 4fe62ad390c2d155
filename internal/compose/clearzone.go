package compose

import (
	"image"

	"github.com/cristianadrielbraun/qrbadge/internal/geometry"
)

// ClearZoneLayout is the geometry ClearZone derives from its inputs.
type ClearZoneLayout struct {
	// Logo is where the scaled logo lands.
	Logo image.Rectangle
	// Zone is the cleared box, clipped to the raster.
	Zone   image.Rectangle
	Radius int
	// Halo is Zone grown by HaloPx on every side; it may extend past the raster.
	Halo       image.Rectangle
	HaloPx     int
	HaloRadius int
}

// PlanClearZone computes the clear-zone geometry for a raster with bounds
// qr and a logo of size logo before scaling.
func PlanClearZone(qr image.Rectangle, logo image.Point, relSize float64, cz ClearZoneSpec) ClearZoneLayout {
	target := LogoTarget(qr, relSize, ClearZoneMinLogo, ClearZoneMaxLogo)
	size := fitLongerSide(logo.X, logo.Y, target)
	pos := centered(qr, size)
	logoBox := image.Rectangle{Min: pos, Max: pos.Add(size)}

	m := geometry.RatioToPixels(geometry.Clamp(cz.Margin, MinMargin, MaxMargin), min(size.X, size.Y))
	zone := geometry.ClipBox(logoBox.Inset(-m), qr)
	radius := geometry.RatioToPixels(geometry.Clamp(cz.CornerRadius, 0, MaxCornerRadius), min(zone.Dx(), zone.Dy()))

	halo := max(0, cz.HaloPx)
	return ClearZoneLayout{
		Logo:       logoBox,
		Zone:       zone,
		Radius:     radius,
		Halo:       zone.Inset(-halo),
		HaloPx:     halo,
		HaloRadius: radius + halo,
	}
}

// ClearZone resets a rounded box around the logo's footprint to the
// background color, optionally clears a halo ring just outside it, then pastes
// the logo on top. Pixels outside the rounded corners keep their QR content.
func ClearZone(qr, logo image.Image, relSize float64, cz ClearZoneSpec) *image.RGBA {
	out := cloneRGBA(qr)
	layout := PlanClearZone(out.Bounds(), logo.Bounds().Size(), relSize, cz)

	zone := layout.Zone
	fillMask(out, zone.Min, geometry.RoundedRectMask(zone.Dx(), zone.Dy(), layout.Radius), cz.Background)

	if layout.HaloPx > 0 {
		ring := geometry.RingMask(layout.Halo.Dx(), layout.Halo.Dy(), layout.HaloPx, layout.HaloRadius)
		fillMask(out, layout.Halo.Min, ring, cz.Background)
	}

	pasteOver(out, scaleLogo(logo, layout.Logo.Size()), layout.Logo.Min)
	return out
}
