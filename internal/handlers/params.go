package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrbadge/internal/colors"
	"github.com/cristianadrielbraun/qrbadge/internal/compose"
	"github.com/cristianadrielbraun/qrbadge/internal/geometry"
	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

// Parameter ranges offered to clients.
const (
	minScale     = 2
	maxScale     = 20
	maxBorder    = 12
	maxHalo      = 8
	maxBorderPx  = 48
	maxGap       = 20
	maxPayload   = 4096
	maxPadRatio  = 0.20
	maxLabelText = 64
)

var errUploadTooLarge = errors.New("upload too large")

// param returns a form value, falling back to the query string.
func param(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(c.Query(key))
}

func hasParam(c *gin.Context, key string) bool {
	if _, ok := c.GetPostForm(key); ok {
		return true
	}
	_, ok := c.GetQuery(key)
	return ok
}

func intParam(c *gin.Context, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(param(c, key))
	if err != nil {
		return def
	}
	return geometry.ClampInt(v, lo, hi)
}

// ratioParam reads a relative size. Values above 1 are taken as percentages.
func ratioParam(c *gin.Context, key string, def float64) float64 {
	v, err := strconv.ParseFloat(param(c, key), 64)
	if err != nil {
		return def
	}
	if v > 1 {
		v /= 100
	}
	return v
}

func boolParam(c *gin.Context, key string, def bool) bool {
	v, err := strconv.ParseBool(param(c, key))
	if err != nil {
		return def
	}
	return v
}

// normalizeHTTPURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme and a non-empty hostname.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", pipeline.ErrEmptyPayload
	}
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", errors.New("URL must include a valid host")
	}
	return u.String(), nil
}

// payload reads the content to encode: data verbatim, or url normalized to
// an absolute http(s) URL.
func payload(c *gin.Context) (string, error) {
	data := param(c, "data")
	if data == "" && param(c, "url") != "" {
		u, err := normalizeHTTPURL(param(c, "url"))
		if err != nil {
			return "", err
		}
		data = u
	}
	if data == "" {
		return "", pipeline.ErrEmptyPayload
	}
	if len(data) > maxPayload {
		return "", errors.New("payload is too long")
	}
	return data, nil
}

// buildRequest assembles everything but the payload from request parameters,
// starting from the configured defaults.
func (h *Handler) buildRequest(c *gin.Context) (pipeline.Request, error) {
	cfg := h.cfg
	defaults, err := cfg.QROptions()
	if err != nil {
		defaults = qr.DefaultOptions()
	}

	opts := defaults
	if level, err := qr.ParseLevel(param(c, "ecc")); err == nil {
		opts.Level = level
	}
	opts.Scale = intParam(c, "scale", defaults.Scale, minScale, maxScale)
	opts.QuietZone = intParam(c, "border", defaults.QuietZone, 0, maxBorder)
	opts.Dark = colors.ParseOr(param(c, "dark"), defaults.Dark)
	opts.Light = colors.ParseOr(param(c, "light"), defaults.Light)

	format := cfg.QR.Format
	if f := param(c, "format"); f != "" {
		format = f
	}

	req := pipeline.Request{
		QR:     opts,
		Format: pipeline.NormalizeFormat(format),
		Verify: boolParam(c, "verify", false),
	}

	logo, err := h.readUpload(c, "logo")
	if err != nil {
		return req, err
	}
	if len(logo) > 0 {
		step := &pipeline.LogoStep{
			Spec: compose.LogoSpec{Data: logo, RelSize: ratioParam(c, "logoSize", cfg.Logo.Size)},
		}
		if boolParam(c, "clearZone", cfg.Logo.ClearZone) {
			cz := cfg.ClearZoneSpec()
			cz.Margin = ratioParam(c, "czMargin", cz.Margin)
			cz.CornerRadius = ratioParam(c, "czRadius", cz.CornerRadius)
			cz.HaloPx = intParam(c, "halo", cz.HaloPx, 0, maxHalo)
			if opts.Light.A != 0 {
				cz.Background = opts.Light
			}
			cz.Background = colors.ParseOr(param(c, "czColor"), cz.Background)
			step.ClearZone = &cz
		}
		req.Logo = step
	}

	if hasParam(c, "label") || boolParam(c, "badge", false) {
		badge := cfg.BadgeSpec()
		if hasParam(c, "label") {
			badge.Text = param(c, "label")
		}
		if r := []rune(badge.Text); len(r) > maxLabelText {
			badge.Text = string(r[:maxLabelText])
		}
		badge.Background = colors.ParseOr(param(c, "badgeColor"), badge.Background)
		badge.TextColor = colors.ParseOr(param(c, "textColor"), badge.TextColor)
		badge.BorderPx = intParam(c, "borderPx", badge.BorderPx, 0, maxBorderPx)
		badge.BorderColor = colors.ParseOr(param(c, "borderColor"), badge.BorderColor)
		badge.PadRatio = geometry.Clamp(ratioParam(c, "pad", badge.PadRatio), 0, maxPadRatio)
		badge.LabelHeightRatio = ratioParam(c, "labelHeight", badge.LabelHeightRatio)
		badge.GapPx = intParam(c, "gap", badge.GapPx, 0, maxGap)
		if opts.Light.A != 0 {
			badge.Interior = opts.Light
		}
		req.Badge = &badge
	}
	return req, nil
}

// readUpload returns the bytes of an optional multipart file, bounded by the
// configured upload limit.
func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	limit := int64(max(1, h.cfg.Server.MaxUploadMB)) << 20
	if fh.Size > limit {
		return nil, errUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s upload: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	if int64(len(data)) > limit {
		return nil, errUploadTooLarge
	}
	return data, nil
}
