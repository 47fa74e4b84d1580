package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordLaunch()
	a.RecordLaunch()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.WindowsLaunched))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.WindowsLaunched))
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordHTTPRequest("GET", "/apps", "200", 10*time.Millisecond, 0, 100)
	m.RecordHTTPRequest("POST", "/api/:service", "401", 30*time.Millisecond, 50, 20)
	m.SetWindowsOpen(3)
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()
	m.RecordBridgeMessage("app-ready", "app_to_host")

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.TotalRequests)
	assert.Equal(t, int64(1), s.TotalErrors)
	assert.Equal(t, int64(3), s.OpenWindows)
	assert.Equal(t, int64(1), s.ActiveConnections)
	assert.Equal(t, int64(1), s.BridgeMessages)
	assert.InDelta(t, 20.0, s.AvgLatencyMS, 0.5)
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/apps/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/apps/wallet", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/apps/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shell_http_requests_total")
}

func TestTimer(t *testing.T) {
	m := NewMetrics()
	NewTimer(m, "auth", "verify").Stop("failure")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrationCalls.WithLabelValues("auth", "verify", "failure")))

	NewTimer(nil, "auth", "verify").Stop("success")
}
