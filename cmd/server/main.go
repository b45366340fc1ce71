package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"mets-backend/internal/ai"
	"mets-backend/internal/apiclient"
	"mets-backend/internal/cache"
	"mets-backend/internal/config"
	"mets-backend/internal/database"
	"mets-backend/internal/handlers"
	"mets-backend/internal/logging"
	"mets-backend/internal/middleware"
	"mets-backend/internal/notify"
	"mets-backend/internal/orders"
	"mets-backend/internal/services"
	"mets-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	src, closeSource, err := buildSource(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize order source", zap.String("source", cfg.OrderSource), zap.Error(err))
	}
	defer closeSource()

	svcCfg := services.OrderServiceConfig{
		PageSize: cfg.PageSize,
		Logger:   logger,
	}
	if src != nil {
		svcCfg.Source = src
		if w, ok := src.(services.OrderWriter); ok {
			svcCfg.Writer = w
		}
		if st, ok := src.(services.OrderStore); ok {
			svcCfg.Store = st
		}
	}

	if src != nil && cfg.RedisAddr != "" {
		orderCache, err := cache.NewOrderCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		if err != nil {
			logger.Fatal("Failed to initialize redis cache", zap.Error(err))
		}
		defer orderCache.Close()

		cached := cache.NewCachedSource(src, orderCache, logger)
		svcCfg.Source = cached
		svcCfg.Cache = cached
	}

	if cfg.StorageEnabled() {
		svcCfg.Exports = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseStorageBucket)
	}

	if cfg.RiskDemoSeed != 0 {
		svcCfg.Scorer = orders.RuleScorer{Fallback: orders.SeededFallback(cfg.RiskDemoSeed)}
	}

	feed := notify.NewFeed(0, logger)
	svcCfg.Notifier = feed

	orderService := services.NewOrderService(svcCfg)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := orderService.Load(loadCtx); err != nil {
		logger.Warn("Order source unavailable, serving demo orders", zap.Error(err))
	}
	cancelLoad()
	logger.Info("Orders loaded", zap.String("source", cfg.OrderSource), zap.Int("orders", orderService.Count()))

	aiService := newAIService(cfg, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(middleware.ParseOrigins(cfg.CORSOrigins)))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Health:        handlers.NewHealthHandler(orderService, cfg.OrderSource),
		Orders:        handlers.NewOrdersHandler(orderService, aiService),
		View:          handlers.NewViewHandler(orderService),
		AI:            handlers.NewAIHandler(aiService),
		Notifications: handlers.NewNotificationsHandler(feed),
	}, middleware.AuthMiddleware(cfg.JWTSecret))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

// buildSource returns the configured order source, or nil for the built-in
// demo orders, together with a cleanup func.
func buildSource(cfg *config.Config, logger *zap.Logger) (orders.Source, func(), error) {
	noop := func() {}

	switch cfg.OrderSource {
	case config.SourcePostgres:
		migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err = migrator.Run(ctx)
		cancel()
		_ = migrator.Close()
		if err != nil {
			return nil, noop, err
		}

		db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return db, func() { _ = db.Close() }, nil

	case config.SourceSupabase:
		client, err := supabase.NewClient(cfg)
		if err != nil {
			return nil, noop, err
		}
		return supabase.NewDocumentSource(client), noop, nil

	case config.SourceAPI:
		client := apiclient.NewClient(apiclient.Config{
			BaseURL:     cfg.APIBaseURL,
			MockMode:    cfg.APIMockMode,
			Timeout:     cfg.APITimeout,
			Credentials: apiclient.StaticToken(cfg.APIToken),
			OnUnauthorized: func() {
				logger.Warn("Order API rejected the configured token")
			},
		}, logger)
		return client, noop, nil
	}

	return nil, noop, nil
}

func newAIService(cfg *config.Config, logger *zap.Logger) *ai.Service {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	gemini := ai.NewGeminiProvider(ai.GeminiConfig{
		APIKey: cfg.GeminiAPIKey,
		APIURL: cfg.GeminiAPIURL,
		Model:  cfg.GeminiModel,
	}, httpClient)

	openRouter := ai.NewOpenRouterProvider(ai.OpenRouterConfig{
		APIKey:         cfg.OpenRouterAPIKey,
		APIURL:         cfg.OpenRouterAPIURL,
		ChatModel:      cfg.OpenRouterChatModel,
		InstructModel:  cfg.OpenRouterInstructModel,
		TechnicalModel: cfg.OpenRouterTechnicalModel,
		SiteURL:        cfg.OpenRouterSiteURL,
		AppName:        cfg.OpenRouterAppName,
	}, httpClient)

	return ai.NewService(ai.Config{
		ActiveService:   cfg.AIActiveService,
		SystemPrompt:    cfg.AISystemPrompt,
		AskSystemPrompt: cfg.AIAskSystemPrompt,
	}, ai.NewSimulator(), logger, gemini, openRouter)
}
