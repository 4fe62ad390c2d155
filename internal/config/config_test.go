package config_test

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrbadge/internal/config"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "H", cfg.QR.ECC)
	assert.Equal(t, 10, cfg.QR.Scale)
	assert.Equal(t, 4, cfg.QR.QuietZone)
	assert.InDelta(t, 0.20, cfg.Logo.Size, 1e-9)
	assert.False(t, cfg.Logo.ClearZone)
	assert.Equal(t, "Scan mich", cfg.Badge.Text)
	assert.Equal(t, 12, cfg.Badge.BorderPx)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := config.Defaults()
	cfg.QR.Scale = 14
	cfg.Badge.Text = "Menu"
	cfg.Logging.Format = "json"

	require.NoError(t, config.Save(cfg, path))
	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 14, loaded.QR.Scale)
	assert.Equal(t, "Menu", loaded.Badge.Text)
	assert.Equal(t, "json", loaded.Logging.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qr:\n  scale: 6\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.QR.Scale)
	assert.Equal(t, 4, cfg.QR.QuietZone)
	assert.Equal(t, "Scan mich", cfg.Badge.Text)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qr: [unterminated"), 0o600))
	_, err = config.Load(path)
	require.Error(t, err)
}

func TestQROptions(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.QR.ECC = "q"
	cfg.QR.Scale = 500
	cfg.QR.Dark = "#112233"
	cfg.QR.Light = "nonsense"

	opts, err := cfg.QROptions()
	require.NoError(t, err)
	assert.Equal(t, qr.LevelQ, opts.Level)
	assert.Equal(t, qr.MaxScale, opts.Scale)
	assert.Equal(t, color.RGBA{0x11, 0x22, 0x33, 255}, opts.Dark)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, opts.Light)

	cfg.QR.ECC = "X"
	_, err = cfg.QROptions()
	require.Error(t, err)
}

func TestSpecs(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.QR.Light = "#FAFAFA"
	cfg.Logo.HaloPx = 3
	cfg.Badge.Color = "#FF0000"

	cz := cfg.ClearZoneSpec()
	assert.Equal(t, 3, cz.HaloPx)
	assert.Equal(t, color.RGBA{0xFA, 0xFA, 0xFA, 255}, cz.Background)

	b := cfg.BadgeSpec()
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, b.Background)
	assert.Equal(t, "Scan mich", b.Text)
	assert.InDelta(t, 0.20, b.LabelHeightRatio, 1e-9)
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(config.EnvPort, "9090")
	t.Setenv(config.EnvLogLevel, "DEBUG")
	t.Setenv(config.EnvWorkers, "8")

	cfg := config.Defaults()
	config.ApplyEnvironment(cfg)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Batch.Workers)
}

func TestApplyEnvironment_IgnoresBadWorkers(t *testing.T) {
	t.Setenv(config.EnvWorkers, "-2")
	cfg := config.Defaults()
	config.ApplyEnvironment(cfg)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	fallback := config.NewLogger(config.LoggingConfig{Level: "loud"}, &buf)
	assert.Equal(t, logrus.InfoLevel, fallback.GetLevel())
}
