package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/l3auth/core"
	"github.com/layer-3/l3auth/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints
type AuthHandlers struct {
	auth   *service.AuthService
	domain string
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth *service.AuthService, domain string) *AuthHandlers {
	return &AuthHandlers{
		auth:   auth,
		domain: domain,
	}
}

// loginResponse carries the created session plus its token, which doubles as
// the value of the session cookie.
type loginResponse struct {
	core.L3Session
	Token string `json:"l3Session"`
}

// Health identifies the service.
func (h *AuthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "L3 authentication service",
	})
}

// Nonce issues a single-use login nonce.
func (h *AuthHandlers) Nonce(c *gin.Context) {
	nonce, err := h.auth.CreateNonce(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonce)
}

// Login runs the signed-message login protocol and opens a session.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": http.StatusBadRequest})
		return
	}

	sessionCtx, err := h.auth.Login(c.Request.Context(), req, h.messageDomain(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	sessions := h.auth.Sessions()
	c.SetCookie(sessions.CookieName(), sessionCtx.Token, int(sessions.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, loginResponse{L3Session: sessionCtx.Session, Token: sessionCtx.Token})
}

// Logout invalidates the current session and clears the cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionCtx, ok := sessionFromContext(c)
	if !ok {
		abortWithError(c, core.ErrMissingSession)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sessionCtx); err != nil {
		abortWithError(c, err)
		return
	}

	c.SetCookie(h.auth.Sessions().CookieName(), "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the current session.
func (h *AuthHandlers) Session(c *gin.Context) {
	sessionCtx, ok := sessionFromContext(c)
	if !ok {
		abortWithError(c, core.ErrMissingSession)
		return
	}

	c.JSON(http.StatusOK, sessionCtx.Session)
}

// Me returns the authenticated caller's session view.
func (h *AuthHandlers) Me(c *gin.Context) {
	sessionCtx, ok := sessionFromContext(c)
	if !ok {
		abortWithError(c, core.ErrMissingSession)
		return
	}

	c.JSON(http.StatusOK, sessionCtx.Session)
}

// messageDomain is the domain the canonical sign-in message is bound to: the
// configured override when set, otherwise the host the request arrived on.
func (h *AuthHandlers) messageDomain(c *gin.Context) string {
	if h.domain != "" {
		return h.domain
	}
	return c.Request.Host
}
