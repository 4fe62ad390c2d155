package compose

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// Text autoscaling parameters.
const (
	TextShrinkRatio = 0.92
	MinTextSize     = 10.0
	MaxFitAttempts  = 16
)

// TextMeasurer reports the tight pixel box of text set at size points.
type TextMeasurer interface {
	Measure(text string, size float64) (w, h int)
}

// Typeface measures and draws text.
type Typeface interface {
	TextMeasurer
	Face(size float64) font.Face
}

// Font is a Typeface backed by a parsed TrueType font.
type Font struct {
	tt *truetype.Font
}

var (
	defaultFontOnce sync.Once
	defaultFont     *Font
	defaultFontErr  error
)

// DefaultFont returns Go Bold. The parsed font is immutable and shared.
func DefaultFont() (*Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = ParseFont(gobold.TTF)
	})
	return defaultFont, defaultFontErr
}

// ParseFont parses TrueType data.
func ParseFont(ttf []byte) (*Font, error) {
	tt, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Font{tt: tt}, nil
}

// Face returns a face at size points (72 DPI, so points equal pixels).
func (f *Font) Face(size float64) font.Face {
	return truetype.NewFace(f.tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Measure implements TextMeasurer.
func (f *Font) Measure(text string, size float64) (int, int) {
	b := inkBounds(f.Face(size), text)
	return b.Dx(), b.Dy()
}

// inkBounds is the pixel box text covers when drawn with its origin at (0,0).
func inkBounds(face font.Face, text string) image.Rectangle {
	b, _ := font.BoundString(face, text)
	return fixedToRect(b)
}

func fixedToRect(b fixed.Rectangle26_6) image.Rectangle {
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

// TextFit is the outcome of FitText.
type TextFit struct {
	Size     float64
	Width    int
	Height   int
	Attempts int
	// Sizes lists every size measured, start first; it never increases.
	Sizes []float64
	Fits  bool
}

// FitText shrinks text from start by TextShrinkRatio until it fits in
// maxW×maxH, for at most MaxFitAttempts steps and never below MinTextSize.
// Text that still overflows is set at MinTextSize.
func FitText(m TextMeasurer, text string, maxW, maxH int, start float64) TextFit {
	size := start
	w, h := m.Measure(text, size)
	fit := TextFit{Sizes: []float64{size}}

	for (w > maxW || h > maxH) && fit.Attempts < MaxFitAttempts {
		next := max(MinTextSize, math.Floor(size*TextShrinkRatio))
		if next >= size {
			break
		}
		size = next
		w, h = m.Measure(text, size)
		fit.Attempts++
		fit.Sizes = append(fit.Sizes, size)
	}

	fit.Fits = w <= maxW && h <= maxH
	if !fit.Fits && size > MinTextSize {
		size = MinTextSize
		w, h = m.Measure(text, size)
		fit.Sizes = append(fit.Sizes, size)
	}
	fit.Size, fit.Width, fit.Height = size, w, h
	return fit
}

// drawTextCentered sets text at size so its ink box is centered in box.
func drawTextCentered(dst *image.RGBA, face font.Face, text string, box image.Rectangle, c color.Color) {
	ink := inkBounds(face, text)
	x := box.Min.X + (box.Dx()-ink.Dx())/2 - ink.Min.X
	y := box.Min.Y + (box.Dy()-ink.Dy())/2 - ink.Min.Y

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(text, float64(x), float64(y))
}
