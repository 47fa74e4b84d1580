package http

import (
	"net/http"

	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// SaveSession saves the current desktop layout under a name
func (h *Handlers) SaveSession(c *gin.Context) {
	var req types.SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateName(req.Name, "name"); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateDescription(req.Description, "description", false); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	sess, err := h.Sessions.Save(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess.ToMetadata()})
}

// SaveDefaultSession overwrites the default session
func (h *Handlers) SaveDefaultSession(c *gin.Context) {
	sess, err := h.Sessions.SaveDefault(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess.ToMetadata()})
}

// ListSessions lists saved sessions, newest first
func (h *Handlers) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	sessions, err := h.Sessions.List(ctx)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"stats":    h.Sessions.Stats(ctx),
	})
}

// GetSession returns a saved session with its workspace
func (h *Handlers) GetSession(c *gin.Context) {
	sess, err := h.Sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

// RestoreSession replaces the desktop with a saved layout
func (h *Handlers) RestoreSession(c *gin.Context) {
	result, err := h.Sessions.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": result.Session.ToMetadata(),
		"skipped": result.Skipped,
		"windows": h.Desktop.List(),
	})
}

// DeleteSession removes a saved session
func (h *Handlers) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.Sessions.Delete(c.Request.Context(), sessionID); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": sessionID})
}
