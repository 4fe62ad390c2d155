package compose

import (
	"image"
	"math"
	"strings"

	"github.com/cristianadrielbraun/qrbadge/internal/geometry"
)

// BadgeLayout is the geometry Badge derives from the QR size and a BadgeSpec.
type BadgeLayout struct {
	Canvas   image.Rectangle
	PadPx    int
	LabelPx  int
	BorderPx int
	GapPx    int
	// OuterRadius rounds the frame silhouette; InnerRadius is OuterRadius
	// minus BorderPx, floored at zero, so the border keeps its thickness
	// through the corners.
	OuterRadius int
	InnerRadius int
	Interior    image.Rectangle
	QR          image.Rectangle
	// Strip is the badge below the QR. Its top edge is square, its bottom
	// corners use StripRadius.
	Strip       image.Rectangle
	StripRadius int
	// Text is the strip interior available to the label.
	Text image.Rectangle
}

// PlanBadge computes the card geometry for a QR raster of size qr.
func PlanBadge(qr image.Point, spec BadgeSpec) BadgeLayout {
	w, h := qr.X, qr.Y
	side := min(w, h)

	l := BadgeLayout{
		PadPx:    geometry.RatioToPixels(geometry.Clamp(spec.PadRatio, 0, MaxPadRatio), side),
		LabelPx:  geometry.RatioToPixels(geometry.Clamp(spec.LabelHeightRatio, MinLabelHeightRatio, MaxLabelHeightRatio), side),
		BorderPx: max(0, spec.BorderPx),
		GapPx:    max(0, spec.GapPx),
	}
	l.LabelPx = max(1, l.LabelPx)

	totalW := w + 2*l.PadPx + 2*l.BorderPx
	totalH := h + 2*l.PadPx + l.GapPx + l.LabelPx + 2*l.BorderPx
	l.Canvas = image.Rect(0, 0, totalW, totalH)

	ratio := geometry.Clamp(spec.CornerRatio, 0, MaxCornerRadius)
	l.OuterRadius = min(int(math.Round(ratio*float64(totalW+totalH)/2)), geometry.MaxRadius(totalW, totalH))
	l.InnerRadius = max(0, l.OuterRadius-l.BorderPx)

	l.Interior = l.Canvas.Inset(l.BorderPx)
	qrMin := l.Interior.Min.Add(image.Pt(l.PadPx, l.PadPx))
	l.QR = image.Rectangle{Min: qrMin, Max: qrMin.Add(qr)}

	top := l.QR.Max.Y + l.GapPx
	l.Strip = image.Rect(l.Interior.Min.X+l.PadPx, top, l.Interior.Max.X-l.PadPx, top+l.LabelPx)
	l.StripRadius = min(l.InnerRadius, geometry.MaxRadius(l.Strip.Dx(), l.Strip.Dy()))

	padX := int(float64(l.Strip.Dx()) * 0.04)
	padY := max(2, int(float64(l.Strip.Dy())*0.10))
	l.Text = image.Rect(l.Strip.Min.X+padX, l.Strip.Min.Y+padY, l.Strip.Max.X-padX, l.Strip.Max.Y-padY)
	return l
}

// StartTextSize is the initial label size for a strip of the given height.
func StartTextSize(stripHeight int) float64 {
	return math.Max(14, math.Floor(float64(stripHeight)*0.56))
}

// Badge places qr on a card: a filled rounded frame in the border color, an
// inset interior, the QR with symmetric padding and a badge strip below it
// carrying spec.Text at the largest size that fits. The frame and interior
// share one outline, so QR panel and badge read as a single bordered card.
// tf may be nil when spec.Text is empty.
func Badge(qr image.Image, spec BadgeSpec, tf Typeface) *image.RGBA {
	l := PlanBadge(qr.Bounds().Size(), spec)
	canvas := image.NewRGBA(l.Canvas)

	// With no border the interior shares the silhouette; painting both would
	// leave border color in the anti-aliased corners.
	if l.BorderPx > 0 {
		fillMask(canvas, image.Point{}, geometry.RoundedRectMask(l.Canvas.Dx(), l.Canvas.Dy(), l.OuterRadius), spec.BorderColor)
	}
	if !l.Interior.Empty() {
		fillMask(canvas, l.Interior.Min, geometry.RoundedRectMask(l.Interior.Dx(), l.Interior.Dy(), l.InnerRadius), spec.Interior)
	}

	pasteOver(canvas, qr, l.QR.Min)

	if !l.Strip.Empty() {
		strip := geometry.RoundedRectMask(l.Strip.Dx(), l.Strip.Dy(), l.StripRadius)
		flattenTop(strip, l.StripRadius)
		fillMask(canvas, l.Strip.Min, strip, spec.Background)
	}

	text := strings.TrimSpace(spec.Text)
	if text != "" && tf != nil && !l.Text.Empty() {
		fit := FitText(tf, text, l.Text.Dx(), l.Text.Dy(), StartTextSize(l.Strip.Dy()))
		drawTextCentered(canvas, tf.Face(fit.Size), text, l.Strip, spec.TextColor)
	}
	return canvas
}

// flattenTop makes the first rows of m fully opaque so its top corners are square.
func flattenTop(m *image.Alpha, rows int) {
	b := m.Bounds()
	for y := b.Min.Y; y < min(b.Max.Y, b.Min.Y+rows); y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m.Pix[m.PixOffset(x, y)] = 255
		}
	}
}
