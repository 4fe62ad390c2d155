package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrbadge/internal/batch"
)

// BatchHandler renders one composite per row of an uploaded CSV ("csv" form
// file) and responds with a ZIP archive. Rendering options are the same as
// for QRCodeHandler; a row's label column replaces the badge text.
func (h *Handler) BatchHandler(c *gin.Context) {
	raw, err := h.readUpload(c, "csv")
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}

	rows, err := batch.ParseCSV(bytes.NewReader(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv has no rows"})
		return
	}
	if limit := h.cfg.Batch.MaxRows; limit > 0 && len(rows) > limit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("csv has %d rows, the limit is %d", len(rows), limit)})
		return
	}

	template, err := h.buildRequest(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	entries := h.runner.Run(c.Request.Context(), rows, template)
	if err := c.Request.Context().Err(); err != nil {
		h.log.WithError(err).Warn("batch canceled")
		return
	}

	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}

	var buf bytes.Buffer
	if err := batch.WriteZip(&buf, entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to build archive: %v", err)})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="qr_batch.zip"`)
	c.Header("X-Batch-Rows", strconv.Itoa(len(entries)))
	c.Header("X-Batch-Failed", strconv.Itoa(failed))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
