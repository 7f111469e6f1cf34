package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	database "github.com/claremont-dine/menu-api/internal/db"
	"github.com/claremont-dine/menu-api/internal/menu/cache"
	"github.com/claremont-dine/menu-api/internal/menu/coalesce"
	"github.com/claremont-dine/menu-api/internal/menu/orchestrator"
	"github.com/claremont-dine/menu-api/internal/menu/service"
	"github.com/claremont-dine/menu-api/internal/menu/snapshot"
	"github.com/claremont-dine/menu-api/internal/pkg/config"
	"github.com/claremont-dine/menu-api/internal/pkg/logger"
	"github.com/claremont-dine/menu-api/internal/pkg/middleware"
	"github.com/claremont-dine/menu-api/internal/routes"
	"github.com/claremont-dine/menu-api/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(zapcore.InfoLevel, zap.String("port", cfg.ServerPort), zap.String("service", "menu-api")); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger.Log.Info("starting menu-api")

	otelShutdown, err := server.InitObservability("menu-api", "localhost:4318", logger.Log)
	if err != nil {
		logger.Log.Fatal("failed to initialize observability", zap.Error(err))
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Log.Error("failed to shutdown tracing", zap.Error(err))
		}
	}()

	ctx := context.Background()
	dbPool, err := setupDatabase(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("failed to set up database", zap.Error(err))
	}

	srv := server.New(cfg, logger.Log, dbPool)
	defer srv.Close()

	store := snapshot.New(dbPool, logger.Log)
	runs := snapshot.NewRunRecorder(dbPool, logger.Log)
	orch := orchestrator.New(store, runs, logger.Log)

	menuCache := cache.New(cache.NewInProcessBackend(), logger.Log)
	coalescer := coalesce.New()
	menuService := service.New(menuCache, coalescer, orch, logger.Log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Tracing("menu-api"))
	r.Use(middleware.Logger(logger.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	routes.Setup(r, menuService, logger.Log)
	srv.SetRouter(r)

	server.StartPprofServer(":6060", logger.Log)

	httpServer := srv.HTTPServer()
	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil {
			logger.Log.Info("server stopped", zap.Error(err))
		}
	}()

	done := make(chan bool, 1)
	server.GracefulShutdown(httpServer, logger.Log, done)
	<-done
}

func setupDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	logger.Log.Info("setting up database connection and migrations")

	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database config: %w", err)
	}

	pool, err := database.Init(ctx, dbConfig.ConnectionURL, logger.Log)
	if err != nil {
		return nil, fmt.Errorf("initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, logger.Log) {
		pool.Close()
		return nil, fmt.Errorf("database did not become ready")
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger.Log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Log.Info("database setup complete",
		zap.String("host", cfg.Postgres.Host),
		zap.String("db", cfg.Postgres.DB))
	return pool, nil
}
