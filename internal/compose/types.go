// Package compose is the compositing engine: it decorates a rendered QR
// raster with a centered logo (plain overlay or over a rounded clear zone with
// an optional halo) and wraps it in a bordered card with a bottom badge.
//
// Every function takes its inputs by value and returns a fresh *image.RGBA;
// nothing is cached between calls. Relative parameters are clamped before any
// geometry is derived, so out-of-range input never produces degenerate shapes.
package compose

import "image/color"

// Relative-size bounds.
const (
	OverlayMinLogo = 0.05
	OverlayMaxLogo = 0.35

	ClearZoneMinLogo = 0.08
	ClearZoneMaxLogo = 0.28
	MinMargin        = 0.04
	MaxMargin        = 0.20
	MaxCornerRadius  = 0.5

	MaxPadRatio         = 0.25
	MinLabelHeightRatio = 0.10
	MaxLabelHeightRatio = 0.40
	DefaultCornerRatio  = 0.12
)

var white = color.RGBA{255, 255, 255, 255}

// LogoSpec is a logo to place at the center of the symbol. RelSize is the
// logo's longer side as a fraction of the QR raster's shorter edge.
type LogoSpec struct {
	Data    []byte
	RelSize float64
}

// ClearZoneSpec controls the cleared area behind a logo.
type ClearZoneSpec struct {
	// Margin around the logo, relative to the logo's shorter side.
	Margin float64
	// CornerRadius relative to the zone's shorter side: 0 square, 0.5 fully round.
	CornerRadius float64
	// HaloPx is the thickness of the ring cleared just outside the zone; 0 disables it.
	HaloPx int
	// Background is the fill of the zone and halo.
	Background color.RGBA
}

// DefaultClearZone returns a white zone with a 10% margin and 20% rounding.
func DefaultClearZone() ClearZoneSpec {
	return ClearZoneSpec{Margin: 0.10, CornerRadius: 0.20, Background: white}
}

// BadgeSpec describes the bordered card and its bottom badge.
type BadgeSpec struct {
	// Text drawn in the badge; empty suppresses the text but keeps the badge.
	Text string
	// Background is the badge fill.
	Background color.RGBA
	TextColor  color.RGBA
	// BorderPx is the outer frame thickness.
	BorderPx    int
	BorderColor color.RGBA
	// Interior fills the card behind the QR.
	Interior color.RGBA
	// PadRatio is the gap between QR and frame, relative to the QR edge.
	PadRatio float64
	// LabelHeightRatio is the badge height, relative to the QR edge.
	LabelHeightRatio float64
	// GapPx separates QR and badge.
	GapPx int
	// CornerRatio sets the outer radius relative to the canvas' mean edge.
	CornerRatio float64
}

// DefaultBadge returns the stock blue badge with a 12px connected frame.
func DefaultBadge() BadgeSpec {
	blue := color.RGBA{0x0B, 0x5F, 0xFF, 255}
	return BadgeSpec{
		Text:             "Scan mich",
		Background:       blue,
		TextColor:        white,
		BorderPx:         12,
		BorderColor:      blue,
		Interior:         white,
		PadRatio:         0.06,
		LabelHeightRatio: 0.20,
		CornerRatio:      DefaultCornerRatio,
	}
}
