package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrbadge/internal/colors"
	"github.com/cristianadrielbraun/qrbadge/internal/compose"
	"github.com/cristianadrielbraun/qrbadge/internal/config"
	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

// renderFlags are the rendering options shared by render and batch.
type renderFlags struct {
	format    string
	ecc       string
	scale     int
	border    int
	dark      string
	light     string
	logo      string
	logoSize  float64
	clearZone bool
	czMargin  float64
	czRadius  float64
	halo      int

	badge       bool
	label       string
	badgeColor  string
	textColor   string
	borderPx    int
	borderColor string
	pad         float64
	labelHeight float64
	gap         int

	verify bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	d := config.Defaults()
	fs := cmd.Flags()
	fs.StringVar(&f.format, "format", "", "output format: png, svg or jpg")
	fs.StringVar(&f.ecc, "ecc", "", "error correction level: L, M, Q or H")
	fs.IntVar(&f.scale, "scale", d.QR.Scale, "pixels per module")
	fs.IntVar(&f.border, "border", d.QR.QuietZone, "quiet zone in modules")
	fs.StringVar(&f.dark, "dark", "", "module color")
	fs.StringVar(&f.light, "light", "", "background color or \"transparent\"")

	fs.StringVar(&f.logo, "logo", "", "logo image file (PNG, JPEG, GIF, BMP, WebP or SVG)")
	fs.Float64Var(&f.logoSize, "logo-size", d.Logo.Size, "logo size relative to the QR edge")
	fs.BoolVar(&f.clearZone, "clear-zone", d.Logo.ClearZone, "clear a rounded zone behind the logo")
	fs.Float64Var(&f.czMargin, "cz-margin", d.Logo.Margin, "clear zone margin relative to the logo")
	fs.Float64Var(&f.czRadius, "cz-radius", d.Logo.CornerRadius, "clear zone corner rounding, 0 to 0.5")
	fs.IntVar(&f.halo, "halo", d.Logo.HaloPx, "halo ring around the clear zone in pixels")

	fs.BoolVar(&f.badge, "badge", false, "wrap the code in a bordered card with a badge")
	fs.StringVar(&f.label, "label", "", "badge text; implies --badge")
	fs.StringVar(&f.badgeColor, "badge-color", "", "badge color")
	fs.StringVar(&f.textColor, "text-color", "", "badge text color")
	fs.IntVar(&f.borderPx, "border-px", d.Badge.BorderPx, "card border thickness in pixels")
	fs.StringVar(&f.borderColor, "border-color", "", "card border color")
	fs.Float64Var(&f.pad, "pad", d.Badge.Pad, "padding between code and border relative to the QR edge")
	fs.Float64Var(&f.labelHeight, "label-height", d.Badge.LabelHeight, "badge height relative to the QR edge")
	fs.IntVar(&f.gap, "gap", d.Badge.GapPx, "gap between code and badge in pixels")

	fs.BoolVar(&f.verify, "verify", false, "fail unless the result scans back to its payload")
}

// request merges the configuration with the flags the user set explicitly.
func (f *renderFlags) request(cmd *cobra.Command, cfg *config.Config) (pipeline.Request, error) {
	changed := cmd.Flags().Changed

	opts, err := cfg.QROptions()
	if err != nil {
		return pipeline.Request{}, err
	}
	if f.ecc != "" {
		if opts.Level, err = qr.ParseLevel(f.ecc); err != nil {
			return pipeline.Request{}, err
		}
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("border") {
		opts.QuietZone = f.border
	}
	if f.dark != "" {
		if opts.Dark, err = colors.Parse(f.dark); err != nil {
			return pipeline.Request{}, err
		}
	}
	if f.light != "" {
		if opts.Light, err = colors.Parse(f.light); err != nil {
			return pipeline.Request{}, err
		}
	}

	format := cfg.QR.Format
	if f.format != "" {
		format = f.format
	}
	req := pipeline.Request{QR: opts.Normalize(), Format: pipeline.NormalizeFormat(format), Verify: f.verify}

	if f.logo != "" {
		// #nosec G304 -- logo path is supplied by the user
		data, err := os.ReadFile(f.logo)
		if err != nil {
			return req, fmt.Errorf("failed to read logo: %w", err)
		}
		size := cfg.Logo.Size
		if changed("logo-size") {
			size = f.logoSize
		}
		step := &pipeline.LogoStep{Spec: compose.LogoSpec{Data: data, RelSize: size}}

		useZone := cfg.Logo.ClearZone
		if changed("clear-zone") {
			useZone = f.clearZone
		}
		if useZone {
			cz := cfg.ClearZoneSpec()
			if changed("cz-margin") {
				cz.Margin = f.czMargin
			}
			if changed("cz-radius") {
				cz.CornerRadius = f.czRadius
			}
			if changed("halo") {
				cz.HaloPx = f.halo
			}
			if req.QR.Light.A != 0 {
				cz.Background = req.QR.Light
			}
			step.ClearZone = &cz
		}
		req.Logo = step
	}

	if f.badge || changed("label") {
		b := cfg.BadgeSpec()
		if changed("label") {
			b.Text = f.label
		}
		b.Background = colors.ParseOr(f.badgeColor, b.Background)
		b.TextColor = colors.ParseOr(f.textColor, b.TextColor)
		b.BorderColor = colors.ParseOr(f.borderColor, b.BorderColor)
		if changed("border-px") {
			b.BorderPx = f.borderPx
		}
		if changed("pad") {
			b.PadRatio = f.pad
		}
		if changed("label-height") {
			b.LabelHeightRatio = f.labelHeight
		}
		if changed("gap") {
			b.GapPx = f.gap
		}
		if req.QR.Light.A != 0 {
			b.Interior = req.QR.Light
		}
		req.Badge = &b
	}
	return req, nil
}
