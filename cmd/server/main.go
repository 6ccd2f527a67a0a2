package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appgrid "github.com/catalogsync/backend/internal/application/grid"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/cache"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/ecommerce"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/internal/infrastructure/scheduler"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"github.com/catalogsync/backend/internal/interfaces/http/handler"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/catalogsync/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// apiVersion prefixes the API routes and the in-memory export links
const apiVersion = "v1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	traceCfg, metricsCfg := telemetry.FromConfig(cfg.Telemetry)

	// The OTLP log pipeline needs a logger of its own before the real one exists
	bootLog, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, traceCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	log, err := logger.New(logCfg, telemetry.NewZapOTELCore(logProvider, traceCfg.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting catalog grid server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", telemetry.ServiceVersion),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, traceCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithConnectRetry(5, 2*time.Second))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	dbInst, err := telemetry.NewDBInstrumentation(meterProvider.Meter("catalog-grid/db"),
		telemetry.DBTracingConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := dbInst.Register(db.DB); err != nil {
		log.Fatal("Failed to register database instrumentation", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := dbInst.ObservePool(sqlDB); err != nil {
			log.Warn("Failed to observe connection pool", zap.Error(err))
		}
	}

	// Layouts and the variant cache live in redis when it is reachable
	stores, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		// production refuses to run on per-process layouts and replay records
		cache.WithInMemoryFallback(!cfg.IsProduction()),
		cache.WithVariantTTL(cfg.Grid.VariantCacheTTL),
	).CreateStores()
	if err != nil {
		log.Fatal("Failed to create grid stores", zap.Error(err))
	}

	exports, err := storage.NewExportStorage(ctx, &cfg.Storage, "http://localhost:"+cfg.App.Port+"/api/"+apiVersion+"/exports", log)
	if err != nil {
		log.Fatal("Failed to create export storage", zap.Error(err))
	}

	publisher := newPublisher(cfg.Storefront, log)

	gridMetrics, err := telemetry.NewGridMetrics(meterProvider.Meter("catalog-grid/grid"))
	if err != nil {
		log.Fatal("Failed to create grid metrics", zap.Error(err))
	}

	service := appgrid.NewService(
		appgrid.NewSessions(),
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormVariantRepository(db.DB),
		publisher,
		appgrid.Config{
			PageSize:      cfg.Grid.PageSize,
			DragThreshold: cfg.Grid.DragThreshold,
			SessionTTL:    cfg.Grid.SessionTTL,
			MaxLocalPages: cfg.Grid.MaxLocalPages,
			ExportURLTTL:  cfg.Grid.ExportURLTTL,
		},
		appgrid.WithLayoutRepository(stores.Layouts),
		appgrid.WithVariantCache(stores.Variants),
		appgrid.WithExportStorage(exports),
		appgrid.WithMetrics(gridMetrics),
		appgrid.WithLogger(logger.Named(log, "grid")),
	)
	if err := gridMetrics.ObserveSessions(service.Sessions().Len); err != nil {
		log.Warn("Failed to observe open sessions", zap.Error(err))
	}

	sweeper := scheduler.NewSessionSweeper(cfg.Grid.SweepCron, service, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start session sweeper", zap.Error(err))
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, limiter, err := router.NewEngine(router.EngineOptions{
		HTTP:           cfg.HTTP,
		Logger:         log,
		Meter:          meterProvider.Meter("catalog-grid/http"),
		TracingEnabled: tracerProvider.IsEnabled(),
		ServiceName:    traceCfg.ServiceName,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	r := router.NewRouter(engine, router.WithAPIVersion(apiVersion))
	r.Register(
		router.GridRoutes(handler.NewGridHandler(service),
			middleware.Idempotency(stores.Idempotency, cfg.Grid.ActionReplayTTL)),
		router.ProductRoutes(handler.NewProductHandler(service)),
		router.SystemRoutes(handler.NewSystemHandler(map[string]handler.Pinger{
			"database": handler.PingFunc(db.Ping),
		})),
	)
	if memory, ok := exports.(*storage.MemoryExportStorage); ok {
		r.Register(router.ExportRoutes(handler.NewExportHandler(memory)))
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	stopCleanup := make(chan struct{})
	if limiter != nil {
		go cleanupLimiter(limiter, cfg.HTTP.RateLimitWindow, stopCleanup)
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stopCleanup)
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Error("Session sweeper did not stop", zap.Error(err))
	}
	if err := stores.Close(); err != nil {
		log.Error("Error closing grid stores", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = logProvider.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// newPublisher returns the storefront client, or a dry run publisher when
// no storefront is configured.
func newPublisher(cfg config.StorefrontConfig, log *zap.Logger) catalog.StorefrontPublisher {
	sfCfg := ecommerce.NewStorefrontConfig(cfg)
	if sfCfg.BaseURL == "" {
		log.Warn("Storefront not configured, pushes are dry runs")
		return ecommerce.NewDryRunPublisher(log)
	}
	publisher, err := ecommerce.NewStorefrontPublisher(sfCfg, log)
	if err != nil {
		log.Fatal("Invalid storefront configuration", zap.Error(err))
	}
	return publisher
}

func cleanupLimiter(limiter *middleware.RateLimiter, every time.Duration, stop <-chan struct{}) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Cleanup()
		case <-stop:
			return
		}
	}
}
