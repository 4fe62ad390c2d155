package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrbadge/internal/batch"
	"github.com/cristianadrielbraun/qrbadge/internal/config"
	"github.com/cristianadrielbraun/qrbadge/internal/handlers"
	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	p, err := pipeline.New(&qr.Generator{TempDir: t.TempDir()}, nil)
	require.NoError(t, err)
	h := handlers.New(p, batch.NewRunner(p, 2, nil), cfg, nil)

	r := gin.New()
	h.Register(r)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeImage(t *testing.T, body []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	return img
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp["error"]
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func redLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestQRCodeHandler_MissingData(t *testing.T) {
	t.Parallel()
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/api/qr", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, pipeline.ErrEmptyPayload.Error(), errorMessage(t, w.Body.Bytes()))
}

func TestQRCodeHandler_PayloadOverCapacity(t *testing.T) {
	t.Parallel()
	q := url.Values{"data": {strings.Repeat("x", 3000)}, "ecc": {"H"}}
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/api/qr?"+q.Encode(), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w.Body.Bytes()), "error correction level")
}

func TestQRCodeHandler_InvalidURL(t *testing.T) {
	t.Parallel()
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/api/qr?url=ftp://example.org", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w.Body.Bytes()), "http")
}

func TestQRCodeHandler_PNG(t *testing.T) {
	t.Parallel()
	q := url.Values{"data": {"https://example.org"}, "scale": {"4"}, "border": {"2"}}
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/api/qr?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img := decodeImage(t, w.Body.Bytes())
	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.Zero(t, b.Dx()%4)
}

func TestQRCodeHandler_URLIsNormalized(t *testing.T) {
	t.Parallel()
	q := url.Values{"url": {"example.org/menu"}, "verify": {"true"}}
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/api/qr?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("X-QR-Verified"))
}

func TestQRCodeHandler_ScaleIsClamped(t *testing.T) {
	t.Parallel()
	r := newRouter(t)
	small := serve(r, httptest.NewRequest(http.MethodGet, "/api/qr?data=x&scale=2&border=0", nil))
	tiny := serve(r, httptest.NewRequest(http.MethodGet, "/api/qr?data=x&scale=-5&border=0", nil))
	require.Equal(t, http.StatusOK, small.Code)
	require.Equal(t, http.StatusOK, tiny.Code)
	assert.Equal(t, decodeImage(t, small.Body.Bytes()).Bounds(), decodeImage(t, tiny.Body.Bytes()).Bounds())
}

func TestQRCodeHandler_SVG(t *testing.T) {
	t.Parallel()
	w := serve(newRouter(t), httptest.NewRequest(http.MethodGet, "/api/qr?data=hello&format=svg&download=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "qrcode.svg")
	assert.Contains(t, w.Body.String(), "<svg")
}

func TestQRCodeHandler_LogoAndBadge(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	plain := serve(r, httptest.NewRequest(http.MethodGet, "/api/qr?data=https://example.org", nil))
	require.Equal(t, http.StatusOK, plain.Code)
	plainBounds := decodeImage(t, plain.Body.Bytes()).Bounds()

	req := multipartRequest(t, "/api/qr", map[string]string{
		"data":     "https://example.org",
		"label":    "Scan mich",
		"borderPx": "12",
		"logoSize": "20",
		"verify":   "true",
	}, upload{field: "logo", name: "logo.png", data: redLogo(t)})
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("X-QR-Warnings"))

	img := decodeImage(t, w.Body.Bytes())
	assert.Greater(t, img.Bounds().Dy(), plainBounds.Dy())
	assert.Greater(t, img.Bounds().Dx(), plainBounds.Dx())
}

func TestQRCodeHandler_ClearZoneIsOptIn(t *testing.T) {
	t.Parallel()
	r := newRouter(t)
	render := func(fields map[string]string) []byte {
		fields["data"] = "https://example.org"
		w := serve(r, multipartRequest(t, "/api/qr", fields, upload{field: "logo", name: "logo.png", data: redLogo(t)}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return w.Body.Bytes()
	}

	byDefault := render(map[string]string{})
	overlay := render(map[string]string{"clearZone": "false"})
	cleared := render(map[string]string{"clearZone": "true"})
	assert.Equal(t, overlay, byDefault)
	assert.NotEqual(t, cleared, byDefault)
}

func TestQRCodeHandler_BadLogoWarns(t *testing.T) {
	t.Parallel()
	req := multipartRequest(t, "/api/qr", map[string]string{"data": "hello"},
		upload{field: "logo", name: "logo.png", data: []byte("garbage")})
	w := serve(newRouter(t), req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("X-QR-Warnings"), "logo")
}

func TestBatchHandler(t *testing.T) {
	t.Parallel()
	csv := "data;filename\nhttps://one.example;one\n;two\nhttps://three.example;three\n"
	req := multipartRequest(t, "/api/batch", map[string]string{"scale": "4"},
		upload{field: "csv", name: "rows.csv", data: []byte(csv)})
	w := serve(newRouter(t), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "3", w.Header().Get("X-Batch-Rows"))
	assert.Equal(t, "1", w.Header().Get("X-Batch-Failed"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"one.png", "two.error.txt", "three.png"}, names)
}

func TestBatchHandler_Errors(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	missing := serve(r, multipartRequest(t, "/api/batch", nil))
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	noData := serve(r, multipartRequest(t, "/api/batch", nil,
		upload{field: "csv", name: "rows.csv", data: []byte("url\nx\n")}))
	assert.Equal(t, http.StatusBadRequest, noData.Code)
	assert.Equal(t, batch.ErrNoDataColumn.Error(), errorMessage(t, noData.Body.Bytes()))
}
