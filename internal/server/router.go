package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/docvault/docvault-backend/internal/handlers"
	"github.com/docvault/docvault-backend/internal/middleware"
	"github.com/docvault/docvault-backend/internal/types"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	ActionsHandler *handlers.ActionsHandler
	WebhookHandler *handlers.WebhookHandler
	DocsHandler    *handlers.DocsHandler
	TagsHandler    *handlers.TagsHandler
	MetricsHandler *handlers.MetricsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("docvault-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Scoped actions
	actions := protected.Group("/v1/actions")
	actions.POST("/run", cfg.AuthMiddleware.RequireRoles(types.RoleUser, types.RoleAdmin), cfg.ActionsHandler.Run)
	actions.GET("/usage/month", cfg.ActionsHandler.MonthlyUsage)

	// Webhooks
	protected.POST("/v1/webhooks/ocr", cfg.WebhookHandler.OCR)

	// Documents
	protected.POST("/v1/docs", cfg.AuthMiddleware.RequireRoles(types.RoleUser, types.RoleAdmin), cfg.DocsHandler.Upload)
	protected.GET("/v1/folders", cfg.DocsHandler.ListFolders)
	protected.GET("/v1/folders/:tag/docs", cfg.DocsHandler.ListFolderDocuments)
	protected.GET("/v1/search", cfg.DocsHandler.Search)

	// Tags
	api := protected.Group("/api/v1")
	api.POST("/tag", cfg.TagsHandler.Create)
	api.GET("/tag", cfg.TagsHandler.List)
	api.PUT("/tag/:id", cfg.TagsHandler.UpdateName)

	// Ops
	protected.GET("/v1/metrics", cfg.MetricsHandler.Snapshot)

	return router
}
