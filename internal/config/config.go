// Package config provides configuration management for qrbadge.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cristianadrielbraun/qrbadge/internal/colors"
	"github.com/cristianadrielbraun/qrbadge/internal/compose"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	QR      QRConfig      `yaml:"qr"`
	Logo    LogoConfig    `yaml:"logo"`
	Badge   BadgeConfig   `yaml:"badge"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MaxUploadMB bounds multipart uploads (logos, CSV files).
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// QRConfig defines how bare symbols are rendered.
type QRConfig struct {
	ECC       string `yaml:"ecc"`
	Scale     int    `yaml:"scale"`
	QuietZone int    `yaml:"quiet_zone"`
	Dark      string `yaml:"dark"`
	Light     string `yaml:"light"`
	Format    string `yaml:"format"`
}

// LogoConfig defines default logo placement.
type LogoConfig struct {
	Size         float64 `yaml:"size"`
	ClearZone    bool    `yaml:"clear_zone"`
	Margin       float64 `yaml:"margin"`
	CornerRadius float64 `yaml:"corner_radius"`
	HaloPx       int     `yaml:"halo_px"`
}

// BadgeConfig defines the default badge and frame.
type BadgeConfig struct {
	Text        string  `yaml:"text"`
	Color       string  `yaml:"color"`
	TextColor   string  `yaml:"text_color"`
	BorderPx    int     `yaml:"border_px"`
	BorderColor string  `yaml:"border_color"`
	Pad         float64 `yaml:"pad"`
	LabelHeight float64 `yaml:"label_height"`
	GapPx       int     `yaml:"gap_px"`
	CornerRatio float64 `yaml:"corner_ratio"`
}

// BatchConfig defines CSV batch processing limits.
type BatchConfig struct {
	Workers int `yaml:"workers"`
	MaxRows int `yaml:"max_rows"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from the specified file on top of Defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// QROptions converts the QR section into render options. Malformed colors
// fall back to black on white.
func (c *Config) QROptions() (qr.Options, error) {
	opts := qr.DefaultOptions()
	level, err := qr.ParseLevel(c.QR.ECC)
	if err != nil {
		return opts, err
	}
	opts.Level = level
	opts.Scale = c.QR.Scale
	opts.QuietZone = c.QR.QuietZone
	opts.Dark = colors.ParseOr(c.QR.Dark, opts.Dark)
	opts.Light = colors.ParseOr(c.QR.Light, opts.Light)
	return opts.Normalize(), nil
}

// ClearZoneSpec returns the configured clear zone, filled with the QR light color.
func (c *Config) ClearZoneSpec() compose.ClearZoneSpec {
	cz := compose.DefaultClearZone()
	cz.Margin = c.Logo.Margin
	cz.CornerRadius = c.Logo.CornerRadius
	cz.HaloPx = c.Logo.HaloPx
	cz.Background = colors.ParseOr(c.QR.Light, cz.Background)
	return cz
}

// BadgeSpec returns the configured badge.
func (c *Config) BadgeSpec() compose.BadgeSpec {
	b := compose.DefaultBadge()
	b.Text = c.Badge.Text
	b.Background = colors.ParseOr(c.Badge.Color, b.Background)
	b.TextColor = colors.ParseOr(c.Badge.TextColor, b.TextColor)
	b.BorderPx = c.Badge.BorderPx
	b.BorderColor = colors.ParseOr(c.Badge.BorderColor, b.BorderColor)
	b.PadRatio = c.Badge.Pad
	b.LabelHeightRatio = c.Badge.LabelHeight
	b.GapPx = c.Badge.GapPx
	b.CornerRatio = c.Badge.CornerRatio
	return b
}
