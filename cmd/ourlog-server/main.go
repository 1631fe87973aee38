package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ourlog/internal/api/handlers"
	"ourlog/internal/config"
	"ourlog/internal/domain"
	"ourlog/internal/infrastructure/mysql"
	"ourlog/internal/infrastructure/redis"
	"ourlog/internal/services"
	"ourlog/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to the standard search paths)")
	flag.Parse()

	log := logger.New()
	log.Info("Starting OurLog backend")

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log.Info("Loaded configuration", "config", cfg.GetConfigString())

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	// Test MySQL connection
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Initialize repositories
	tradeRepo := mysql.NewMySQLTradeRepository(db)
	bidRepo := mysql.NewMySQLBidRepository(db)
	userRepo := mysql.NewMySQLUserRepository(db)
	postRepo := mysql.NewMySQLPostRepository(db)

	// Initialize Redis based components
	stateCache := redis.NewTradeStateCache(rdb)
	eventPublisher := redis.NewEventPublisher(rdb)

	// Initialize services
	bidService := services.NewBidService(
		tradeRepo,
		bidRepo,
		userRepo,
		stateCache,
		eventPublisher,
		domain.SystemClock(),
		log,
	)
	postService := services.NewPostService(postRepo, log)
	stateSyncer := services.NewTradeStateSyncer(tradeRepo, stateCache, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
	}))

	// Initialize handlers
	tradeHandler := handlers.NewTradeHandler(bidService, log)
	postHandler := handlers.NewPostHandler(postService, log)

	// API routes
	api := e.Group("/api/v1")
	api.POST("/trades/:tradeId/bids", tradeHandler.PlaceBid)
	api.GET("/trades/:tradeId", tradeHandler.GetTrade)
	api.GET("/trades/:tradeId/bids", tradeHandler.GetBidHistory)
	api.GET("/posts/:postId", postHandler.GetPost)
	api.POST("/posts/:postId/views", postHandler.IncreaseViews)

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "ourlog-backend",
			"timestamp": time.Now().Format(time.RFC3339),
			"port":      cfg.Server.Port,
		})
	})

	// Start background services
	go func() {
		if err := stateSyncer.Start(context.Background()); err != nil {
			log.Error("Failed to start state syncer", "error", err)
		}
	}()

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := stateSyncer.Stop(); err != nil {
		log.Error("Failed to stop state syncer", "error", err)
	}

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped")
}
