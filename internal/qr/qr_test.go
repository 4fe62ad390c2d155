package qr_test

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/srwiley/oksvg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

func newGenerator(t *testing.T) *qr.Generator {
	t.Helper()
	return &qr.Generator{TempDir: t.TempDir()}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]qr.Level{"l": qr.LevelL, "M": qr.LevelM, " q ": qr.LevelQ, "H": qr.LevelH} {
		got, err := qr.ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want.String(), got.String())
	}
	_, err := qr.ParseLevel("X")
	assert.Error(t, err)
	assert.Less(t, qr.LevelL, qr.LevelH)
}

func TestOptions_Normalize(t *testing.T) {
	t.Parallel()
	o := qr.Options{Level: qr.Level(9), Scale: 0, QuietZone: -3}.Normalize()
	assert.Equal(t, qr.LevelH, o.Level)
	assert.Equal(t, qr.MinScale, o.Scale)
	assert.Equal(t, 0, o.QuietZone)

	o = qr.Options{Scale: 1000, QuietZone: 1000}.Normalize()
	assert.Equal(t, qr.MaxScale, o.Scale)
	assert.Equal(t, qr.MaxQuietZone, o.QuietZone)
}

func TestRaster_Dimensions(t *testing.T) {
	t.Parallel()
	g := newGenerator(t)
	opts := qr.DefaultOptions()

	sym, err := g.Raster("https://example.org", opts)
	require.NoError(t, err)
	require.Positive(t, sym.Modules)

	side := (sym.Modules + 2*opts.QuietZone) * opts.Scale
	assert.Equal(t, side, sym.Image.Bounds().Dx())
	assert.Equal(t, side, sym.Image.Bounds().Dy())

	// Quiet zone is light, the finder pattern's outer corner is dark.
	assert.Equal(t, opts.Light, sym.Image.RGBAAt(1, 1))
	q := opts.QuietZone * opts.Scale
	assert.Equal(t, opts.Dark, sym.Image.RGBAAt(q+1, q+1))
}

func TestRaster_ColorsAndNoQuietZone(t *testing.T) {
	t.Parallel()
	g := newGenerator(t)
	opts := qr.Options{
		Level: qr.LevelM,
		Scale: 4,
		Dark:  color.RGBA{0x0B, 0x5F, 0xFF, 255},
		Light: color.RGBA{255, 255, 240, 255},
	}
	sym, err := g.Raster("hello", opts)
	require.NoError(t, err)
	assert.Equal(t, sym.Modules*4, sym.Image.Bounds().Dx())
	assert.Equal(t, opts.Dark, sym.Image.RGBAAt(0, 0))
}

func TestRaster_EmptyPayload(t *testing.T) {
	t.Parallel()
	_, err := newGenerator(t).Raster("   ", qr.DefaultOptions())
	assert.ErrorIs(t, err, qr.ErrEmptyPayload)
}

func TestRaster_PayloadOverCapacity(t *testing.T) {
	t.Parallel()
	opts := qr.DefaultOptions()
	_, err := newGenerator(t).Raster(strings.Repeat("x", 3000), opts)
	require.ErrorIs(t, err, qr.ErrUnencodable)

	opts.Level = qr.LevelL
	_, err = newGenerator(t).Raster(strings.Repeat("x", 2000), opts)
	require.NoError(t, err)
}

func TestModules_FinderPatterns(t *testing.T) {
	t.Parallel()
	bitmap, err := newGenerator(t).Modules("https://example.org", qr.LevelH)
	require.NoError(t, err)
	n := len(bitmap)
	require.GreaterOrEqual(t, n, 21)

	for _, origin := range [][2]int{{0, 0}, {n - 7, 0}, {0, n - 7}} {
		x0, y0 := origin[0], origin[1]
		for i := 0; i < 7; i++ {
			assert.True(t, bitmap[y0][x0+i], "finder top edge")
			assert.True(t, bitmap[y0+6][x0+i], "finder bottom edge")
		}
		assert.False(t, bitmap[y0+1][x0+1], "finder ring gap")
		assert.True(t, bitmap[y0+3][x0+3], "finder center")
	}
}

func TestVector_ViewBoxMatchesRaster(t *testing.T) {
	t.Parallel()
	g := newGenerator(t)
	opts := qr.DefaultOptions()

	doc, err := g.Vector("https://example.org", opts)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("<?xml")))
	assert.Contains(t, string(doc), `fill="#ffffff"`)
	assert.Contains(t, string(doc), `fill="#000000"`)

	sym, err := g.Raster("https://example.org", opts)
	require.NoError(t, err)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.InDelta(t, float64(sym.Image.Bounds().Dx()), icon.ViewBox.W, 0.001)
	assert.InDelta(t, float64(sym.Image.Bounds().Dy()), icon.ViewBox.H, 0.001)
}

func TestVector_TransparentLight(t *testing.T) {
	t.Parallel()
	opts := qr.DefaultOptions()
	opts.Light = color.RGBA{}
	doc, err := newGenerator(t).Vector("abc", opts)
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "<rect")
}

func TestCheck(t *testing.T) {
	t.Parallel()
	assert.NoError(t, newGenerator(t).Check())
}
