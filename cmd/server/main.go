package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	controller "postauto/internal/controller/http"
	"postauto/internal/logs"
	"postauto/internal/postlock"
	"postauto/internal/provider/deepseek"
	"postauto/internal/provider/gemini"
	"postauto/internal/provider/wordpress"
	"postauto/internal/repo/persistent"
	"postauto/internal/telegram"
	"postauto/internal/usecase"
	"postauto/internal/worker"
	"postauto/pkg/artifacts"
	"postauto/pkg/cache"
	"postauto/pkg/config"
	"postauto/pkg/database"
	"postauto/pkg/jwt"
	"postauto/pkg/logger"
	"postauto/pkg/middleware"
	"postauto/pkg/queue"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Migrations are handled by goose - see cmd/migrate/main.go

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}

	// Generated images go to S3/MinIO when AWS credentials are present,
	// otherwise to the local upload directory.
	var store artifacts.Store
	if cfg.AWSAccessKeyID != "" {
		store, err = artifacts.NewS3Store(cfg)
	} else {
		store, err = artifacts.NewLocalStore(cfg.UploadDir)
	}
	if err != nil {
		log.Error("Failed to initialize artifact store: %v", err)
		panic(err)
	}

	jwtService := jwt.NewService(cfg.JWTSecret)

	postRepo := persistent.NewPostRepository(db)
	usageRepo := persistent.NewUsageRepository(db)
	limitsRepo := persistent.NewLimitsRepository(db)
	promptRepo := persistent.NewPromptRepository(db)
	credRepo := persistent.NewCredentialRepository(db)
	logRepo := persistent.NewLogRepository(db)

	recorder := logs.NewRecorder(logRepo, log)
	// Lease TTL outlives the stage timeout so a live stage can never lose
	// its lease mid-flight.
	locker := postlock.New(redisClient, cfg.StageTimeout+time.Minute)

	limitsUseCase := usecase.NewLimitsUseCase(limitsRepo, usageRepo, log)
	credentialsUseCase := usecase.NewCredentialsUseCase(credRepo, cfg.CredentialsSecret)
	promptsUseCase := usecase.NewPromptsUseCase(promptRepo)
	pipelineUseCase := usecase.NewPipelineUseCase(postRepo, queueClient, locker, recorder)
	monitoringUseCase := usecase.NewMonitoringUseCase(postRepo, logRepo, limitsUseCase, queueClient)

	deepseekService := deepseek.NewService(credentialsUseCase, limitsUseCase, cfg.ProviderTimeout)
	geminiService := gemini.NewService(credentialsUseCase, limitsUseCase, store, cfg.ProviderTimeout, cfg.ImageDelay)
	wordpressService := wordpress.NewService(credentialsUseCase, limitsUseCase, store, cfg.ProviderTimeout)

	bot := telegram.NewBot(credentialsUseCase, pipelineUseCase, recorder)
	if err := bot.Start(); err != nil {
		log.Error("Failed to start Telegram bot: %v", err)
	}

	processor := worker.NewProcessor(
		postRepo,
		promptsUseCase,
		deepseekService,
		geminiService,
		wordpressService,
		bot,
		queueClient,
		locker,
		recorder,
		cfg.StageTimeout,
	)
	if err := queueClient.ConsumeJobs(processor.Handle); err != nil {
		log.Error("Failed to start job consumer: %v", err)
		panic(err)
	}

	postHandler := controller.NewPostHandler(pipelineUseCase, log)
	limitsHandler := controller.NewLimitsHandler(limitsUseCase, log)
	promptsHandler := controller.NewPromptsHandler(promptsUseCase, log)
	credentialsHandler := controller.NewCredentialsHandler(credentialsUseCase, map[string]controller.ConnectionTester{
		"deepseek":  deepseekService,
		"gemini":    geminiService,
		"wordpress": wordpressService,
	}, bot, log)
	monitoringHandler := controller.NewMonitoringHandler(monitoringUseCase, log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))

	{
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:id", postHandler.GetPost)
		api.POST("/posts/:id/approve", postHandler.ApprovePost)
		api.POST("/posts/:id/adjust", postHandler.AdjustPost)
		api.POST("/posts/:id/cancel", postHandler.CancelPost)

		api.GET("/limits", limitsHandler.GetLimits)
		api.PUT("/limits", limitsHandler.UpdateLimits)
		api.GET("/usage", limitsHandler.GetUsage)

		api.GET("/prompts", promptsHandler.ListPrompts)
		api.GET("/prompts/active", promptsHandler.GetActivePrompt)
		api.POST("/prompts", promptsHandler.CreatePrompt)
		api.PUT("/prompts/:id", promptsHandler.UpdatePrompt)
		api.POST("/prompts/:id/activate", promptsHandler.ActivatePrompt)

		api.GET("/credentials", credentialsHandler.ListCredentials)
		api.POST("/credentials", credentialsHandler.SetCredential)
		api.POST("/credentials/test/:service", credentialsHandler.TestConnection)
		api.POST("/credentials/telegram/reinit", credentialsHandler.ReinitTelegram)

		api.GET("/status", monitoringHandler.GetStatus)
		api.GET("/logs", monitoringHandler.GetLogs)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bot.Stop()

	// Drain in-flight requests before the stores they depend on go away.
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing RabbitMQ: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	log.Info("Server exited")
}
