// Package qr renders bare QR symbols. Encoding is delegated to
// github.com/yeqown/go-qrcode; this package only turns the symbol into a
// raster or an SVG document with the requested module scale, quiet zone and
// colors. It never looks at anything but the rendered modules.
package qr

import (
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

var (
	// ErrEmptyPayload is returned when there is nothing to encode.
	ErrEmptyPayload = errors.New("payload is empty")
	// ErrUnencodable is returned when the payload does not fit any symbol
	// version at the requested error correction level.
	ErrUnencodable = errors.New("payload cannot be encoded at this error correction level")
)

// Bounds for the geometry options. The module scale is bounded by the
// writer's uint8 module width.
const (
	MinScale     = 1
	MaxScale     = 40
	MaxQuietZone = 40
)

// Options describe how a symbol is drawn.
type Options struct {
	Level     Level
	Scale     int // pixels per module
	QuietZone int // quiet zone width in modules
	Dark      color.RGBA
	Light     color.RGBA
}

// DefaultOptions mirrors the defaults offered to users: ECC H, scale 10,
// quiet zone 4, black on white.
func DefaultOptions() Options {
	return Options{
		Level:     LevelH,
		Scale:     10,
		QuietZone: 4,
		Dark:      color.RGBA{0, 0, 0, 255},
		Light:     color.RGBA{255, 255, 255, 255},
	}
}

// Normalize clamps the geometry fields into their supported ranges.
func (o Options) Normalize() Options {
	if o.Scale < MinScale {
		o.Scale = MinScale
	}
	if o.Scale > MaxScale {
		o.Scale = MaxScale
	}
	if o.QuietZone < 0 {
		o.QuietZone = 0
	}
	if o.QuietZone > MaxQuietZone {
		o.QuietZone = MaxQuietZone
	}
	if o.Level < LevelL || o.Level > LevelH {
		o.Level = LevelH
	}
	return o
}

// Symbol is a rendered QR raster.
type Symbol struct {
	Image *image.RGBA
	// Modules is the symbol's side length in modules, quiet zone excluded.
	Modules int
}

// Generator renders symbols through the standard image writer. Output goes
// through a unique temporary file per call, so a Generator is safe to share.
type Generator struct {
	// TempDir overrides os.TempDir for intermediate files.
	TempDir string
}

// NewGenerator returns a Generator writing intermediates to the system temp dir.
func NewGenerator() *Generator { return &Generator{} }

// Raster renders payload as an RGBA image of exactly
// (modules + 2×quiet zone) × scale pixels per side.
func (g *Generator) Raster(payload string, opts Options) (*Symbol, error) {
	opts = opts.Normalize()
	qrc, err := encode(payload, opts.Level)
	if err != nil {
		return nil, err
	}

	writerOptions := []standard.ImageOption{
		standard.WithQRWidth(uint8(opts.Scale)),
		standard.WithBorderWidth(opts.QuietZone * opts.Scale),
		standard.WithFgColor(opts.Dark),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
	if opts.Light.A == 0 {
		writerOptions = append(writerOptions, standard.WithBgTransparent())
	} else {
		writerOptions = append(writerOptions, standard.WithBgColor(opts.Light))
	}

	img, err := g.render(qrc, writerOptions)
	if err != nil {
		return nil, err
	}

	modules := qrc.Dimension()
	side := (modules + 2*opts.QuietZone) * opts.Scale
	return &Symbol{Image: ensureExactSize(img, side), Modules: modules}, nil
}

// Modules returns the symbol's dark-module bitmap indexed [y][x], quiet zone
// excluded.
func (g *Generator) Modules(payload string, level Level) ([][]bool, error) {
	qrc, err := encode(payload, level)
	if err != nil {
		return nil, err
	}
	// One pixel per module, no border, pure black on white: every pixel is a module.
	img, err := g.render(qrc, []standard.ImageOption{
		standard.WithQRWidth(1),
		standard.WithBorderWidth(0),
		standard.WithBgColor(color.RGBA{255, 255, 255, 255}),
		standard.WithFgColor(color.RGBA{0, 0, 0, 255}),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	})
	if err != nil {
		return nil, err
	}

	n := qrc.Dimension()
	img = ensureExactSize(img, n)
	bitmap := make([][]bool, n)
	for y := 0; y < n; y++ {
		bitmap[y] = make([]bool, n)
		for x := 0; x < n; x++ {
			if img.RGBAAt(x, y).R < 128 {
				bitmap[y][x] = true
			}
		}
	}
	return bitmap, nil
}

// Check renders a test symbol. Callers run it at startup so a broken
// encoder stops the process before any request is accepted.
func (g *Generator) Check() error {
	sym, err := g.Raster("qrbadge", DefaultOptions())
	if err != nil {
		return fmt.Errorf("qr generator unavailable: %w", err)
	}
	if sym.Modules <= 0 || sym.Image.Bounds().Empty() {
		return errors.New("qr generator unavailable: empty test symbol")
	}
	return nil
}

func encode(payload string, level Level) (*qrcode.QRCode, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	qrc, err := qrcode.NewWith(payload, level.encodeOption())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnencodable, err)
	}
	if qrc.Dimension() <= 0 {
		return nil, errors.New("invalid QR matrix dimension")
	}
	return qrc, nil
}

// render saves qrc through a standard writer into a temporary PNG and reads it back.
func (g *Generator) render(qrc *qrcode.QRCode, opts []standard.ImageOption) (*image.RGBA, error) {
	dir := g.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	tmpFile := filepath.Join(dir, generateUniqueFilename("qr", ".png"))
	defer os.Remove(tmpFile)

	writer, err := standard.New(tmpFile, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR writer: %w", err)
	}
	if err := qrc.Save(writer); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to generate QR code image: %w", err)
	}
	// Save already closes the writer; a second close only reports the closed file.
	_ = writer.Close()

	file, err := os.Open(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR image: %w", err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ensureExactSize rescales img to side×side with nearest neighbour so module
// edges stay sharp. Images already at the target size are returned as is.
func ensureExactSize(img *image.RGBA, side int) *image.RGBA {
	b := img.Bounds()
	if side <= 0 || (b.Dx() == side && b.Dy() == side) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	sx := float64(b.Dx()) / float64(side)
	sy := float64(b.Dy()) / float64(side)
	for y := 0; y < side; y++ {
		oy := min(int(float64(y)*sy), b.Dy()-1)
		for x := 0; x < side; x++ {
			ox := min(int(float64(x)*sx), b.Dx()-1)
			dst.SetRGBA(x, y, img.RGBAAt(b.Min.X+ox, b.Min.Y+oy))
		}
	}
	return dst
}

func generateUniqueFilename(prefix, extension string) string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%s_%d_%x%s", prefix, timestamp, randomBytes, extension)
}
