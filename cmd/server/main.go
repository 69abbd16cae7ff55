package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mfgapp "github.com/goldpos/backend/internal/application/manufacturing"
	"github.com/goldpos/backend/internal/infrastructure/auth"
	"github.com/goldpos/backend/internal/infrastructure/config"
	"github.com/goldpos/backend/internal/infrastructure/event"
	"github.com/goldpos/backend/internal/infrastructure/logger"
	"github.com/goldpos/backend/internal/infrastructure/persistence"
	"github.com/goldpos/backend/internal/interfaces/http/handler"
	"github.com/goldpos/backend/internal/interfaces/http/middleware"
	"github.com/goldpos/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting GoldPOS Manufacturing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	lotRepo := persistence.NewGormRawGoldLotRepository(db.DB)
	recordRepo := persistence.NewGormManufacturingRecordRepository(db.DB)
	historyRepo := persistence.NewGormWorkflowHistoryRepository(db.DB)
	contributionRepo := persistence.NewGormContributionRepository(db.DB)
	directory := persistence.NewGormDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	depletionHandler := mfgapp.NewLotDepletionHandler(log, mfgapp.DefaultDepletionThreshold)
	if err := eventBus.Subscribe(depletionHandler); err != nil {
		log.Fatal("Failed to subscribe depletion handler", zap.Error(err))
	}

	// Initialize application services
	ledgerService := mfgapp.NewWeightLedgerService(lotRepo, txScope, log)
	ledgerService.SetEventPublisher(eventBus)

	manufacturingService := mfgapp.NewManufacturingService(recordRepo, txScope, directory, directory, directory, log)
	manufacturingService.SetEventPublisher(eventBus)

	workflowService := mfgapp.NewWorkflowService(recordRepo, historyRepo, txScope, log)
	workflowService.SetEventPublisher(eventBus)

	compositionService := mfgapp.NewCompositionService(contributionRepo, recordRepo)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	manufacturingHandler := handler.NewManufacturingHandler(manufacturingService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	compositionHandler := handler.NewCompositionHandler(compositionService)
	systemHandler := handler.NewSystemHandler()

	// Setup gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	canRead := middleware.RequireAnyPermission("manufacturing:read", "manufacturing:manage")
	canManage := middleware.RequirePermission("manufacturing:manage")

	manufacturingRoutes := router.NewDomainGroup("manufacturing", "/manufacturing")

	// Raw gold lot ledger
	manufacturingRoutes.POST("/lots", canManage, ledgerHandler.RegisterLot)
	manufacturingRoutes.GET("/lots", canRead, ledgerHandler.List)
	manufacturingRoutes.GET("/lots/available", canRead, ledgerHandler.ListAvailable)
	manufacturingRoutes.GET("/lots/:id", canRead, ledgerHandler.Get)
	manufacturingRoutes.GET("/lots/:id/remaining-weight", canRead, ledgerHandler.RemainingWeight)
	manufacturingRoutes.GET("/lots/:id/check-sufficient", canRead, ledgerHandler.CheckSufficient)

	// Manufacturing records
	manufacturingRoutes.POST("/records", canManage, manufacturingHandler.Create)
	manufacturingRoutes.GET("/records", canRead, manufacturingHandler.List)
	manufacturingRoutes.GET("/records/summary", canRead, manufacturingHandler.Summary)
	manufacturingRoutes.GET("/records/search", canRead, manufacturingHandler.SearchByBatch)
	manufacturingRoutes.GET("/records/:id", canRead, manufacturingHandler.Get)
	manufacturingRoutes.DELETE("/records/:id", canManage, manufacturingHandler.Delete)

	// Workflow
	manufacturingRoutes.GET("/records/:id/transitions", canRead, workflowHandler.AvailableTransitions)
	manufacturingRoutes.POST("/records/:id/transition", canManage, workflowHandler.Transition)
	manufacturingRoutes.POST("/records/:id/quality-check", canManage, workflowHandler.QualityCheck)
	manufacturingRoutes.POST("/records/:id/approval", canManage, workflowHandler.Approval)
	manufacturingRoutes.POST("/records/:id/cancel", canManage, workflowHandler.Cancel)
	manufacturingRoutes.GET("/records/:id/history", canRead, workflowHandler.History)

	// Composition
	manufacturingRoutes.POST("/records/:id/contributions", canManage, compositionHandler.Add)
	manufacturingRoutes.GET("/records/:id/contributions", canRead, compositionHandler.List)
	manufacturingRoutes.GET("/records/:id/contributions/total", canRead, compositionHandler.Total)
	manufacturingRoutes.DELETE("/records/:id/contributions/:contributionId", canManage, compositionHandler.Remove)

	r.Register(manufacturingRoutes)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	r.Setup()

	// Simple ping at root API level for basic liveness checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
