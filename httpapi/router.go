// Package httpapi exposes the auth engine over HTTP. It is a thin
// boundary: request binding, bearer extraction, and status mapping. All
// business rules live in the engine.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lessonpath/authcore"
)

// Handler holds the engine and logger shared by all routes.
type Handler struct {
	engine *authcore.Engine
	log    *zap.Logger
}

// NewRouter wires the public and bearer-guarded auth routes.
func NewRouter(engine *authcore.Engine, log *zap.Logger) *gin.Engine {
	h := &Handler{engine: engine, log: log}

	router := gin.New()
	router.Use(gin.Recovery())

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout)
		auth.POST("/activate", h.activate)
		auth.POST("/request-code", h.requestCode)
		auth.POST("/reset-password", h.resetPassword)

		guarded := auth.Group("", RequireAuth(engine))
		guarded.POST("/change-password", h.changePassword)
		guarded.GET("/me", h.me)
	}

	return router
}
