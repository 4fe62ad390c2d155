package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrDecode marks input that could not be read as an image.
var ErrDecode = errors.New("image decode failed")

// maxSVGSide bounds the raster size of SVG logos; they are scaled down to the
// logo target afterwards anyway.
const maxSVGSide = 1024

// Raster inputs declaring more than MaxDecodeSide pixels on a side or
// MaxDecodePixels in total are rejected before any pixel buffer is allocated.
const (
	MaxDecodeSide   = 8192
	MaxDecodePixels = 16 << 20
)

// DecodeError reports which input failed to decode. It matches ErrDecode
// under errors.Is.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// DecodeImage reads PNG, JPEG, GIF, WebP, BMP or SVG bytes. SVG documents are
// rasterized on a transparent background.
func DecodeImage(what string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{What: what, Err: errors.New("no data")}
	}
	if looksLikeSVG(data) {
		img, err := rasterizeSVG(data)
		if err != nil {
			return nil, &DecodeError{What: what, Err: err}
		}
		return img, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{What: what, Err: err}
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, &DecodeError{What: what, Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{What: what, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{What: what, Err: errors.New("empty image")}
	}
	return img, nil
}

func checkDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return errors.New("empty image")
	}
	if w > MaxDecodeSide || h > MaxDecodeSide || int64(w)*int64(h) > MaxDecodePixels {
		return fmt.Errorf("image too large: %dx%d", w, h)
	}
	return nil
}

func looksLikeSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	head = bytes.TrimSpace(head)
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

func rasterizeSVG(data []byte) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 || h <= 0 {
		w, h = maxSVGSide, maxSVGSide
	}
	if longer := max(w, h); longer > maxSVGSide {
		scale := float64(maxSVGSide) / float64(longer)
		w = max(1, int(math.Round(float64(w)*scale)))
		h = max(1, int(math.Round(float64(h)*scale)))
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}
