package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/l3auth/service"
)

// SetupRouter sets up the Gin router. domain overrides the sign-in message
// domain; when empty the request's Host header is used.
func SetupRouter(auth *service.AuthService, domain string) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(auth, domain)

	router.GET("/", handlers.Health)
	router.GET("/auth/nonce", handlers.Nonce)
	router.POST("/l3/auth/login", handlers.Login)

	// Everything below resolves a session before the handler runs.
	protected := router.Group("", SessionMiddleware(auth.Sessions()))
	{
		protected.POST("/l3/auth/logout", handlers.Logout)
		protected.GET("/l3/auth/session", handlers.Session)
		protected.GET("/users/me", handlers.Me)
		protected.GET("/profiles", handlers.Profile)
		protected.GET("/positions", handlers.Positions)
		protected.GET("/activity", handlers.Activity)
	}

	return router
}
