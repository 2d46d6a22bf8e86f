package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/l3auth/core"
	"github.com/layer-3/l3auth/service"
)

const sessionContextKey = "l3SessionContext"

// SessionMiddleware resolves the request's session and aborts with the
// appropriate status when none can be resolved.
func SessionMiddleware(sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionCtx, err := sessions.RequireSessionFromRequest(c.Request)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(sessionContextKey, sessionCtx)
		c.Next()
	}
}

// sessionFromContext returns the session context set by SessionMiddleware.
func sessionFromContext(c *gin.Context) (core.SessionContext, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return core.SessionContext{}, false
	}
	sessionCtx, ok := value.(core.SessionContext)
	return sessionCtx, ok
}

// abortWithError maps protocol errors onto their status and code; anything
// else is an internal failure and deliberately opaque to the client.
func abortWithError(c *gin.Context, err error) {
	var authErr *core.AuthError
	if errors.As(err, &authErr) {
		c.AbortWithStatusJSON(authErr.Status, gin.H{"error": authErr.Message, "code": authErr.Code})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": http.StatusInternalServerError})
}
