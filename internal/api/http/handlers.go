package http

import (
	"errors"
	"net/http"

	"github.com/bitcoin-os/shell/internal/api/ws"
	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/domain/service"
	"github.com/bitcoin-os/shell/internal/domain/session"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/providers/auth"
	"github.com/bitcoin-os/shell/internal/providers/drive"
	"github.com/bitcoin-os/shell/internal/providers/httpclient"
	"github.com/bitcoin-os/shell/internal/providers/oauth"
	"github.com/bitcoin-os/shell/internal/providers/payments"
	"github.com/bitcoin-os/shell/internal/providers/theme"
	"github.com/bitcoin-os/shell/internal/pwa"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by GET /
const Version = "1.0.0"

// Deps are the collaborators the handlers serve
type Deps struct {
	Apps     *registry.Registry
	Desktop  *window.Manager
	Sessions *session.Manager
	Services *service.Registry
	Hub      *ws.Hub
	Themes   *theme.Provider
	Bridge   *ws.Handler
	Auth     *auth.Provider
	OAuth    *oauth.Service
	Stripe   *payments.Provider
	Drive    *drive.Drive
	PWA      *pwa.Handler
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger

	// SecureCookies marks OAuth cookies Secure
	SecureCookies bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Deps
	logger *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{Deps: deps, logger: logging.OrNop(deps.Logger).Named("http")}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
		r.GET("/metrics/json", h.MetricsJSON)
	}
	r.POST("/logs", h.StreamLogs)

	// App catalog
	r.GET("/apps", h.ListApps)
	r.GET("/apps/:id", h.GetApp)

	// Windows
	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.LaunchWindow)
	r.GET("/windows/:id", h.GetWindow)
	r.DELETE("/windows/:id", h.CloseWindow)
	r.POST("/windows/:id/focus", h.WindowCommand(h.Desktop.Focus))
	r.POST("/windows/:id/minimize", h.WindowCommand(h.Desktop.Minimize))
	r.POST("/windows/:id/maximize", h.WindowCommand(h.Desktop.Maximize))
	r.POST("/windows/:id/restore", h.WindowCommand(h.Desktop.Restore))
	r.POST("/windows/:id/toggle", h.WindowCommand(h.Desktop.ToggleMaximize))
	r.POST("/windows/:id/pointer", h.Pointer)
	r.PUT("/viewport", h.SetViewport)

	// Dock, taskbar, drawer
	r.GET("/dock", h.Dock)
	r.GET("/taskbar", h.Taskbar)
	r.GET("/drawer", h.Drawer)

	// Theme and app config
	r.GET("/config", h.OSConfig)
	r.PUT("/theme", h.SetTheme)

	// Sessions
	r.POST("/sessions/save", h.SaveSession)
	r.POST("/sessions/save-default", h.SaveDefaultSession)
	r.GET("/sessions", h.ListSessions)
	r.GET("/sessions/:id", h.GetSession)
	r.POST("/sessions/:id/restore", h.RestoreSession)
	r.DELETE("/sessions/:id", h.DeleteSession)

	// Integrations
	r.GET("/services", h.ListServices)
	r.POST("/services/discover", h.DiscoverServices)
	r.POST("/api/:service", h.ExecuteService)
	r.GET("/api/oauth/:provider/login", h.OAuthLogin)
	r.GET("/api/oauth/:provider/callback", h.OAuthCallback)
	r.POST("/api/stripe/webhook", h.StripeWebhook)
	r.POST("/api/drive/upload", h.UploadFile)
	r.GET("/api/drive/files", h.ListFiles)
	r.GET("/api/drive/files/:id", h.DownloadFile)
	r.DELETE("/api/drive/files/:id", h.DeleteFile)

	if h.Bridge != nil {
		r.GET("/bridge", h.Bridge.HandleConnection)
	}
	if h.PWA != nil {
		r.GET("/sw.js", h.PWA.ServiceWorker)
		r.GET("/manifest.webmanifest", h.PWA.Manifest)
	}
}

// Root handles the liveness probe
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Bitcoin OS Shell",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"desktop":  h.Desktop.Stats(),
		"apps":     h.Apps.Stats(),
		"services": h.Services.Stats(),
		"sessions": h.Sessions.Stats(c.Request.Context()),
		"bridge":   h.Hub.Stats(),
	}
	if h.Auth != nil {
		body["auth"] = h.Auth.Stats()
	}
	if h.OAuth != nil {
		body["oauth"] = h.OAuth.Providers()
	}
	c.JSON(http.StatusOK, body)
}

// respond writes a service result with its data flattened into the body
func respond(c *gin.Context, result *types.Result) {
	body := make(gin.H, len(result.Data)+2)
	for k, v := range result.Data {
		body[k] = v
	}
	body["success"] = result.Success
	if result.Error != nil {
		body["error"] = *result.Error
	}
	c.JSON(result.HTTPStatus(), body)
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, window.ErrWindowNotFound),
		errors.Is(err, registry.ErrAppNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, drive.ErrFileNotFound),
		errors.Is(err, oauth.ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, window.ErrInvalidViewport),
		errors.Is(err, window.ErrInvalidPointer),
		errors.Is(err, drive.ErrEmptyFile),
		errors.Is(err, drive.ErrInvalidName),
		errors.Is(err, payments.ErrNoSignature),
		errors.Is(err, payments.ErrBadSignature),
		errors.Is(err, payments.ErrTimestampExpired),
		errors.Is(err, theme.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, drive.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, oauth.ErrNotConfigured),
		errors.Is(err, payments.ErrNotConfigured),
		errors.Is(err, httpclient.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, oauth.ErrExchange):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// failErr answers with the mapped status and logs server-side failures
func (h *Handlers) failErr(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	fail(c, status, err)
}
