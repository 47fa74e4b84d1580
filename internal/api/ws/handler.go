package ws

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bitcoin-os/shell/internal/bridge"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/shared/id"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades /bridge requests and attaches them to the hub
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates the websocket handler. allowedOrigins empty accepts
// any origin, which suits development where apps run on other ports.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleConnection serves GET /bridge?role=host|app&window=<id>
func (h *Handler) HandleConnection(c *gin.Context) {
	role := Role(c.Query("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ErrInvalidRole.Error()})
		return
	}
	windowID := id.WindowID(c.Query("window"))
	if !id.HasPrefix(windowID.String(), id.WindowPrefix) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid window id"})
		return
	}
	if _, err := h.hub.desktop.Get(windowID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, window.ErrWindowNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(utils.MaxMessageSize)

	err = h.hub.Attach(c.Request.Context(), windowID, role, bridge.NewWSConn(conn))
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.hub.logger.Debug("bridge connection ended", zap.String("window", windowID.String()), zap.Error(err))
	}
}
