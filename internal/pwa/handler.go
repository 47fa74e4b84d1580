package pwa

import (
	"net/http"

	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Apps lists registry apps for the manifest
type Apps interface {
	List() []registry.AppDescriptor
}

// Handler serves /sw.js and /manifest.webmanifest
type Handler struct {
	worker *Worker
	apps   Apps
}

// NewHandler creates the PWA handler
func NewHandler(worker *Worker, apps Apps) *Handler {
	return &Handler{worker: worker, apps: apps}
}

// ServiceWorker serves the rendered worker script
func (h *Handler) ServiceWorker(c *gin.Context) {
	script, err := h.worker.Render()
	if err != nil {
		h.worker.logger.Error("service worker render failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Header("Service-Worker-Allowed", "/")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
}

// Manifest serves the web app manifest
func (h *Handler) Manifest(c *gin.Context) {
	c.Header("Content-Type", "application/manifest+json")
	c.JSON(http.StatusOK, BuildManifest(h.apps.List()))
}
