package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cristianadrielbraun/qrbadge/internal/batch"
	"github.com/cristianadrielbraun/qrbadge/internal/config"
	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
)

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	pipe   *pipeline.Pipeline
	runner *batch.Runner
	cfg    *config.Config
	log    *logrus.Logger
}

// New returns a new Handler instance.
func New(pipe *pipeline.Pipeline, runner *batch.Runner, cfg *config.Config, log *logrus.Logger) *Handler {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{pipe: pipe, runner: runner, cfg: cfg, log: log}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/api/qr", h.QRCodeHandler)
	r.POST("/api/qr", h.QRCodeHandler)
	r.POST("/api/batch", h.BatchHandler)
	r.GET("/healthz", h.Healthz)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
