package http

import (
	"net/http"
	"strings"

	"github.com/bitcoin-os/shell/internal/bridge"
	"github.com/bitcoin-os/shell/internal/domain/dock"
	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/shared/id"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// appView is a descriptor with its URL resolved for the running environment
type appView struct {
	registry.AppDescriptor
	ResolvedURL string `json:"resolved_url"`
}

func (h *Handlers) view(app registry.AppDescriptor) appView {
	resolved, _ := h.Apps.Resolve(app.ID)
	return appView{AppDescriptor: app, ResolvedURL: resolved}
}

// ListApps lists the app catalog
func (h *Handlers) ListApps(c *gin.Context) {
	apps := h.Apps.List()
	views := make([]appView, 0, len(apps))
	for _, app := range apps {
		views = append(views, h.view(app))
	}
	c.JSON(http.StatusOK, gin.H{
		"apps":  views,
		"stats": h.Apps.Stats(),
	})
}

// GetApp returns one app descriptor
func (h *Handlers) GetApp(c *gin.Context) {
	app, err := h.Apps.Get(c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	resp := gin.H{"success": true, "app": h.view(app)}
	if w, ok := h.Desktop.FindByApp(app.ID); ok {
		resp["window"] = w
	}
	c.JSON(http.StatusOK, resp)
}

// ListWindows lists open windows in stacking order
func (h *Handlers) ListWindows(c *gin.Context) {
	resp := gin.H{
		"windows": h.Desktop.List(),
		"stats":   h.Desktop.Stats(),
	}
	if w, ok := h.Desktop.Active(); ok {
		resp["active"] = w
	}
	c.JSON(http.StatusOK, resp)
}

// LaunchWindow opens an app, or raises its existing window
func (h *Handlers) LaunchWindow(c *gin.Context) {
	var req types.LaunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateID(req.AppID, "app_id", true); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	w, created, err := h.Desktop.Launch(c.Request.Context(), req.AppID)
	if err != nil {
		h.failErr(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "window": w, "created": created})
}

// GetWindow returns one window
func (h *Handlers) GetWindow(c *gin.Context) {
	w, err := h.Desktop.Get(id.WindowID(c.Param("id")))
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "window": w})
}

// WindowCommand adapts a single-window manager command to a handler
func (h *Handlers) WindowCommand(command func(id.WindowID) (*window.Window, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := command(id.WindowID(c.Param("id")))
		if err != nil {
			h.failErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "window": w})
	}
}

// Pointer feeds a pointer event into a window's drag/resize state
func (h *Handlers) Pointer(c *gin.Context) {
	var req types.PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	event := window.PointerEvent{
		Kind:   window.PointerKind(req.Kind),
		X:      req.X,
		Y:      req.Y,
		Target: window.Target(req.Target),
	}
	w, err := h.Desktop.Pointer(id.WindowID(c.Param("id")), event)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "window": w})
}

// CloseWindow closes a window and drops its bridge connections
func (h *Handlers) CloseWindow(c *gin.Context) {
	windowID := id.WindowID(c.Param("id"))
	if err := h.Desktop.Close(windowID); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "window_id": windowID})
}

// SetViewport resizes the desktop and refits every window
func (h *Handlers) SetViewport(c *gin.Context) {
	var req types.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	v := window.Viewport{Width: req.Width, Height: req.Height, TopInset: req.TopInset}
	if err := h.Desktop.SetViewport(v); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"viewport": h.Desktop.Viewport(),
		"windows":  h.Desktop.List(),
	})
}

// Dock lists pinned apps with their window state
func (h *Handlers) Dock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": dock.Dock(h.Apps.List(), h.Desktop.List(), h.Apps.Resolve)})
}

// Taskbar lists open apps in launch order
func (h *Handlers) Taskbar(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": dock.Taskbar(h.Apps.List(), h.Desktop.List(), h.Apps.Resolve)})
}

// Drawer lists every app, filtered by ?q=
func (h *Handlers) Drawer(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"items": dock.Drawer(h.Apps.List(), h.Desktop.List(), query, h.Apps.Resolve),
	})
}

// OSConfig returns the config pushed to apps on app-ready. Embedded tells
// the caller whether its request came from inside a frame.
func (h *Handlers) OSConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"config":   h.Hub.Config(),
		"embedded": bridge.DetectEmbedded(bridge.FetchDestProbe(c.Request.Header)),
	})
}

// SetTheme changes the shell theme and broadcasts it to apps
func (h *Handlers) SetTheme(c *gin.Context) {
	var theme bridge.Theme
	if err := c.ShouldBindJSON(&theme); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := h.Themes.Apply(c.Request.Context(), theme); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "theme": h.Hub.Theme()})
}
