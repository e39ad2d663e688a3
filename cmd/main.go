package main

import (
	"context"
	"fmt"
	"os"

	"github.com/docvault/docvault-backend/internal/clients/redis"
	"github.com/docvault/docvault-backend/internal/db"
	"github.com/docvault/docvault-backend/internal/handlers"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/middleware"
	"github.com/docvault/docvault-backend/internal/observability"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/server"
	"github.com/docvault/docvault-backend/internal/services"
	"github.com/docvault/docvault-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "docvault-backend",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownOTel != nil {
		defer func() { _ = shutdownOTel(context.Background()) }()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	tagRepo := repos.NewTagRepo(thePG, log)
	documentRepo := repos.NewDocumentRepo(thePG, log)
	documentTagRepo := repos.NewDocumentTagRepo(thePG, log)
	usageRepo := repos.NewUsageRepo(thePG, log)
	auditLogRepo := repos.NewAuditLogRepo(thePG, log)
	taskRepo := repos.NewTaskRepo(thePG, log)

	// Rate limiter is optional: without REDIS_ADDR the webhook pipeline
	// falls back to counting tasks inside the insert transaction.
	var rateLimiter services.TaskRateLimiter
	if os.Getenv("REDIS_ADDR") != "" {
		taskCounter, err := redis.NewTaskCounter(log)
		if err != nil {
			log.Warn("Redis task counter init failed, using DB fallback", "error", err)
		} else {
			defer taskCounter.Close()
			rateLimiter = taskCounter
		}
	}

	// Services
	log.Info("Setting up services from main...")
	uploadDir := utils.GetEnv("UPLOAD_DIR", "uploads", log)
	fileStore := services.NewLocalFileStore(uploadDir, log)
	audit := services.NewAuditRecorder(auditLogRepo, log)
	authService := services.NewAuthService(userRepo, log)
	scopeResolver := services.NewScopeResolver(tagRepo, documentRepo, documentTagRepo, log)
	scopedActionService := services.NewScopedActionService(
		thePG,
		scopeResolver,
		fileStore,
		audit,
		documentRepo,
		documentTagRepo,
		userRepo,
		usageRepo,
		log,
	)
	webhookService := services.NewWebhookService(thePG, taskRepo, audit, rateLimiter, log)
	docService := services.NewDocService(thePG, fileStore, audit, tagRepo, documentRepo, documentTagRepo, log)
	tagService := services.NewTagService(thePG, tagRepo, log)
	metricsService := services.NewMetricsService(documentRepo, tagRepo, usageRepo, auditLogRepo, log)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	actionsHandler := handlers.NewActionsHandler(scopedActionService, log)
	webhookHandler := handlers.NewWebhookHandler(webhookService, log)
	docsHandler := handlers.NewDocsHandler(docService, log)
	tagsHandler := handlers.NewTagsHandler(tagService, log)
	metricsHandler := handlers.NewMetricsHandler(metricsService, log)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		ActionsHandler: actionsHandler,
		WebhookHandler: webhookHandler,
		DocsHandler:    docsHandler,
		TagsHandler:    tagsHandler,
		MetricsHandler: metricsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
