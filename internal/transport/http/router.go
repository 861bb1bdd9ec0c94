package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/reminder-board/internal/transport/http/handler"
	"github.com/ErlanBelekov/reminder-board/internal/transport/http/middleware"
	"github.com/ErlanBelekov/reminder-board/internal/usecase"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authUsecase *usecase.AuthUsecase, authHandler *handler.AuthHandler, messageHandler *handler.MessageHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.GET("/verify", authHandler.Verify)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Protected API; every route passes the session gate first.
	requireUser := middleware.RequireUser(authUsecase, logger)
	api := r.Group("/api", requireUser)
	api.GET("/messages", messageHandler.List)
	api.POST("/messages", messageHandler.Post)
	api.DELETE("/messages/:id", messageHandler.Delete)
	api.GET("/sessions", authHandler.ListSessions)
	api.DELETE("/sessions/:id", authHandler.RevokeSession)

	return r
}
