package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/pizza-nz/food-ordering/internal/cache"
	"github.com/pizza-nz/food-ordering/internal/config"
	"github.com/pizza-nz/food-ordering/internal/db"
	"github.com/pizza-nz/food-ordering/internal/db/repository"
	"github.com/pizza-nz/food-ordering/internal/events"
	"github.com/pizza-nz/food-ordering/internal/logging"
	"github.com/pizza-nz/food-ordering/internal/router"
	"github.com/pizza-nz/food-ordering/internal/service"
	"github.com/pizza-nz/food-ordering/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited properly")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	// Run database migrations
	if err := db.Migrate(cfg.Database, logger); err != nil {
		return err
	}

	repos := repository.NewRepositories(database)

	// Live event feed for proprietors, plus the broker when configured
	hub := websockets.NewHub(logger)
	publishers := events.Multi{hub}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
		logger.Info("publishing order events", "exchange", cfg.AMQP.Exchange)
	}

	var catalogCache service.CatalogCache
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer client.Close()
		catalogCache = cache.NewRedis(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		logger.Info("catalog cache enabled", "addr", cfg.Redis.Addr)
	}

	authService := service.NewAuthService(repos.User, service.JWTConfig{
		Secret:    cfg.JWT.Secret,
		ExpiresIn: cfg.JWT.ExpiresIn,
	})
	catalogService := service.NewCatalogService(repos.Category, repos.Menu, catalogCache, publishers, logger)
	orderService := service.NewOrderService(repos.Order, publishers, logger)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := router.New(router.Deps{
		Auth:           authService,
		Catalog:        catalogService,
		Orders:         orderService,
		Hub:            hub,
		DB:             database,
		TokenMinutes:   cfg.JWT.ExpiresIn,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
