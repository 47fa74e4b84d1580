package http

import (
	"net/http"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
)

// MetricsSnapshot is the JSON view of the shell's metrics
type MetricsSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Backend   monitoring.Snapshot `json:"backend"`
	Summary   MetricsSummary      `json:"summary"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	ErrorRate        float64 `json:"error_rate"`
	OpenWindows      int     `json:"open_windows"`
	BridgeForwarded  uint64  `json:"bridge_forwarded"`
	BridgeDropped    uint64  `json:"bridge_dropped"`
	RegisteredApps   int     `json:"registered_apps"`
	RegisteredTools  int     `json:"registered_tools"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
}

// MetricsJSON serves GET /metrics/json
func (h *Handlers) MetricsJSON(c *gin.Context) {
	snap := h.Metrics.Snapshot()
	relay := h.Hub.Stats()

	summary := MetricsSummary{
		OpenWindows:      h.Desktop.Stats().TotalWindows,
		BridgeForwarded:  relay.Forwarded,
		BridgeDropped:    relay.Dropped,
		RegisteredApps:   h.Apps.Stats().TotalApps,
		RegisteredTools:  h.Services.Stats().TotalTools,
		AverageLatencyMs: snap.AvgLatencyMS,
	}
	if snap.TotalRequests > 0 {
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}

	c.JSON(http.StatusOK, MetricsSnapshot{
		Timestamp: time.Now().UTC(),
		Backend:   snap,
		Summary:   summary,
	})
}
