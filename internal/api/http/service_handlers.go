package http

import (
	"net/http"
	"strings"

	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// ListServices lists registered integrations
func (h *Handlers) ListServices(c *gin.Context) {
	var category *types.Category
	if raw := c.Query("category"); raw != "" {
		cat := types.Category(raw)
		category = &cat
	}
	c.JSON(http.StatusOK, gin.H{
		"services": h.Services.List(category),
		"stats":    h.Services.Stats(),
	})
}

type discoverRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// DiscoverServices ranks services against a free-text query
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}
	services := h.Services.Discover(req.Query, req.Limit)
	c.JSON(http.StatusOK, gin.H{"services": services, "count": len(services)})
}

// ExecuteService dispatches POST /api/:service {action, ...params}.
// Every body field other than action is a param; a bearer token becomes
// params["token"] unless the body carries one.
func (h *Handlers) ExecuteService(c *gin.Context) {
	serviceID := c.Param("service")

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
		return
	}
	action, _ := body["action"].(string)
	if err := utils.ValidateAction(action); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	delete(body, "action")

	if token := bearerToken(c); token != "" {
		if _, ok := body["token"]; !ok {
			body["token"] = token
		}
	}

	appCtx := &types.Context{
		RemoteIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if windowID := c.GetHeader("X-Window-ID"); windowID != "" {
		appCtx.WindowID = &windowID
	}

	result, err := h.Services.Execute(c.Request.Context(), serviceID+"."+action, body, appCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	respond(c, result)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
