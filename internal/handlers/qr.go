package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
	"github.com/cristianadrielbraun/qrbadge/internal/verify"
)

// QRCodeHandler renders one composite. Parameters come from the query string
// or a (multipart) form; a multipart "logo" file adds a centered logo.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	data, err := payload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.buildRequest(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	req.Payload = data

	res, err := h.pipe.Run(c.Request.Context(), req)
	if err != nil {
		h.log.WithFields(logrus.Fields{"format": req.Format}).WithError(err).Error("failed to render QR")
		c.JSON(statusFor(err), gin.H{"error": fmt.Sprintf("Failed to generate QR code: %v", err)})
		return
	}

	h.log.WithFields(logrus.Fields{
		"format":   res.Extension,
		"bytes":    len(res.Bytes),
		"logo":     req.Logo != nil,
		"badge":    req.Badge != nil,
		"warnings": len(res.Warnings),
	}).Info("rendered QR")

	if len(res.Warnings) > 0 {
		c.Header("X-QR-Warnings", strings.Join(res.Warnings, "; "))
	}
	if res.Verified {
		c.Header("X-QR-Verified", "true")
	}
	if boolParam(c, "download", false) {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="qrcode.%s"`, res.Extension))
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, res.ContentType, res.Bytes)
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrEmptyPayload), errors.Is(err, pipeline.ErrUnencodable):
		return http.StatusBadRequest
	case errors.Is(err, errUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, verify.ErrMismatch), errors.Is(err, verify.ErrUnreadable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
