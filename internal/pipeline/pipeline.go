// Package pipeline drives one composite: render the QR, decorate it with a
// logo and a badge, then encode the result.
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cristianadrielbraun/qrbadge/internal/compose"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
	"github.com/cristianadrielbraun/qrbadge/internal/verify"
)

var (
	// ErrNoGenerator is returned by New when no QR generator is supplied.
	ErrNoGenerator = errors.New("qr generator not available")
	// ErrEmptyPayload is returned by Run when there is nothing to encode.
	ErrEmptyPayload = qr.ErrEmptyPayload
	// ErrUnencodable is returned by Run when the payload exceeds the symbol
	// capacity at the requested error correction level.
	ErrUnencodable = qr.ErrUnencodable
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJPEG = "jpg"
)

// Generator renders bare QR symbols.
type Generator interface {
	Raster(payload string, opts qr.Options) (*qr.Symbol, error)
	Vector(payload string, opts qr.Options) ([]byte, error)
}

// LogoStep places a logo. A nil ClearZone draws the logo straight over the
// modules.
type LogoStep struct {
	Spec      compose.LogoSpec
	ClearZone *compose.ClearZoneSpec
}

// Request is one composite to produce.
type Request struct {
	Payload string
	QR      qr.Options
	Format  string
	Logo    *LogoStep
	Badge   *compose.BadgeSpec
	// Verify decodes the final raster and fails the request when it does not
	// read back as Payload.
	Verify bool
}

// Result is the encoded composite.
type Result struct {
	Image       image.Image
	Bytes       []byte
	ContentType string
	Extension   string
	// Warnings lists stages that were skipped, e.g. an undecodable logo.
	Warnings []string
	Verified bool
}

// Pipeline runs requests against a generator.
type Pipeline struct {
	gen  Generator
	font compose.Typeface
	log  *logrus.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTypeface overrides the badge font.
func WithTypeface(tf compose.Typeface) Option {
	return func(p *Pipeline) { p.font = tf }
}

// New returns a pipeline around gen. A nil logger discards output.
func New(gen Generator, log *logrus.Logger, opts ...Option) (*Pipeline, error) {
	if gen == nil {
		return nil, ErrNoGenerator
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	p := &Pipeline{gen: gen, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NormalizeFormat maps user input onto a supported format, defaulting to PNG.
func NormalizeFormat(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "svg":
		return FormatSVG
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// Run produces the composite for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Payload) == "" {
		return nil, ErrEmptyPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := req.QR.Normalize()
	format := NormalizeFormat(req.Format)
	entry := p.log.WithFields(logrus.Fields{"format": format, "ecc": opts.Level.String()})

	// A bare vector symbol skips the raster path entirely.
	if format == FormatSVG && req.Logo == nil && req.Badge == nil && !req.Verify {
		data, err := p.gen.Vector(req.Payload, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate vector QR: %w", err)
		}
		entry.Debug("rendered vector symbol")
		return &Result{Bytes: data, ContentType: "image/svg+xml", Extension: FormatSVG}, nil
	}

	sym, err := p.gen.Raster(req.Payload, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	res := &Result{}
	var img image.Image = sym.Image

	if req.Logo != nil {
		img = p.applyLogo(img, req.Logo, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Badge != nil {
		img, err = p.applyBadge(img, *req.Badge)
		if err != nil {
			return nil, err
		}
	}

	if req.Verify {
		if err := verify.Check(img, req.Payload); err != nil {
			return nil, fmt.Errorf("composite does not scan: %w", err)
		}
		res.Verified = true
	}

	res.Image = img
	if err := encode(res, img, format); err != nil {
		return nil, err
	}
	entry.WithFields(logrus.Fields{
		"width":    img.Bounds().Dx(),
		"height":   img.Bounds().Dy(),
		"warnings": len(res.Warnings),
	}).Debug("rendered composite")
	return res, nil
}

func (p *Pipeline) applyLogo(img image.Image, step *LogoStep, res *Result) image.Image {
	if len(step.Spec.Data) == 0 {
		return img
	}
	logo, err := compose.DecodeImage("logo", step.Spec.Data)
	if err != nil {
		p.log.WithError(err).Warn("skipping logo")
		res.Warnings = append(res.Warnings, err.Error())
		return img
	}
	if step.ClearZone != nil {
		return compose.ClearZone(img, logo, step.Spec.RelSize, *step.ClearZone)
	}
	return compose.OverlayLogo(img, logo, step.Spec.RelSize)
}

func (p *Pipeline) applyBadge(img image.Image, spec compose.BadgeSpec) (image.Image, error) {
	tf := p.font
	if tf == nil && strings.TrimSpace(spec.Text) != "" {
		f, err := compose.DefaultFont()
		if err != nil {
			return nil, fmt.Errorf("failed to load badge font: %w", err)
		}
		tf = f
	}
	return compose.Badge(img, spec, tf), nil
}

func encode(res *Result, img image.Image, format string) error {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
		res.ContentType, res.Extension = "image/jpeg", FormatJPEG
	case FormatSVG:
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
		res.Bytes = embedRaster(img.Bounds().Size(), buf.Bytes())
		res.ContentType, res.Extension = "image/svg+xml", FormatSVG
		return nil
	default:
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
		res.ContentType, res.Extension = "image/png", FormatPNG
	}
	res.Bytes = buf.Bytes()
	return nil
}

// embedRaster wraps a decorated PNG in an SVG document of the same size.
func embedRaster(size image.Point, pngData []byte) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`,
		size.X, size.Y, size.X, size.Y)
	fmt.Fprintf(&b, `<image width="%d" height="%d" href="data:image/png;base64,%s"/>`,
		size.X, size.Y, base64.StdEncoding.EncodeToString(pngData))
	b.WriteString(`</svg>`)
	return []byte(b.String())
}
