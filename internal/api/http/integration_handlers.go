package http

import (
	"crypto/subtle"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stateCookie    = "oauth_state"
	verifierCookie = "oauth_verifier"
	oauthCookieAge = 600

	maxWebhookBytes   = 1 << 20
	multipartOverhead = 1 << 20
)

var (
	errUnconfigured = errors.New("integration is not configured")
	errInvalidState = errors.New("invalid oauth state")
)

func (h *Handlers) setOAuthCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/api/oauth", "", h.SecureCookies, true)
}

// OAuthLogin redirects the browser to the vendor's consent page
func (h *Handlers) OAuthLogin(c *gin.Context) {
	if h.OAuth == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	authz, err := h.OAuth.Begin(c.Param("provider"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	h.setOAuthCookie(c, stateCookie, authz.State, oauthCookieAge)
	if authz.Verifier != "" {
		h.setOAuthCookie(c, verifierCookie, authz.Verifier, oauthCookieAge)
	}
	c.Redirect(http.StatusFound, authz.URL)
}

// OAuthCallback completes a login. Vendors that echo state must return
// the value stored in the oauth_state cookie.
func (h *Handlers) OAuthCallback(c *gin.Context) {
	if h.OAuth == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	name := c.Param("provider")

	configured, known := h.OAuth.Providers()[name]
	switch {
	case !known:
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown oauth provider: " + name})
		return
	case !configured:
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "oauth provider not configured: " + name})
		return
	}

	if denied := c.Query("error"); denied != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "authorization denied: " + denied})
		return
	}

	if h.OAuth.EchoesState(name) {
		state, err := c.Cookie(stateCookie)
		if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(c.Query("state"))) != 1 {
			fail(c, http.StatusForbidden, errInvalidState)
			return
		}
	}

	code := c.Query("code")
	if code == "" {
		code = c.Query("authToken")
	}
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing authorization code"})
		return
	}
	verifier, _ := c.Cookie(verifierCookie)

	h.setOAuthCookie(c, stateCookie, "", -1)
	h.setOAuthCookie(c, verifierCookie, "", -1)

	login, err := h.OAuth.Complete(c.Request.Context(), name, code, verifier)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"provider": login.Provider,
		"profile":  login.Profile,
		"token":    login.Token,
	})
}

// StripeWebhook verifies and applies a Stripe event
func (h *Handlers) StripeWebhook(c *gin.Context) {
	if h.Stripe == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	eventType, err := h.Stripe.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			h.logger.Warn("webhook rejected", zap.Error(err))
		}
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "type": eventType})
}

// UploadFile stores a multipart "file" field in the drive
func (h *Handlers) UploadFile(c *gin.Context) {
	if h.Drive == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Drive.MaxBytes()+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "file exceeds upload limit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "multipart field \"file\" is required"})
		return
	}
	src, err := header.Open()
	if err != nil {
		h.failErr(c, err)
		return
	}
	defer src.Close()

	file, err := h.Drive.Upload(c.Request.Context(), header.Filename, c.PostForm("owner"), src)
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "file": file})
}

// ListFiles lists drive files, optionally for one ?owner=
func (h *Handlers) ListFiles(c *gin.Context) {
	if h.Drive == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	files, err := h.Drive.List(c.Request.Context(), c.Query("owner"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": files, "count": len(files)})
}

// DownloadFile streams a file's bytes. ?inline=true serves it for display.
func (h *Handlers) DownloadFile(c *gin.Context) {
	if h.Drive == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	file, data, err := h.Drive.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	disposition := "attachment"
	if inline, _ := strconv.ParseBool(c.Query("inline")); inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, file.MIMEType, data)
}

// DeleteFile removes a drive file
func (h *Handlers) DeleteFile(c *gin.Context) {
	if h.Drive == nil {
		fail(c, http.StatusServiceUnavailable, errUnconfigured)
		return
	}
	fileID := c.Param("id")
	if err := h.Drive.Delete(c.Request.Context(), fileID); err != nil {
		h.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": fileID})
}
