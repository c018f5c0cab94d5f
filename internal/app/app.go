package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ecommerce-auth/internal/cache"
	"ecommerce-auth/internal/config"
	"ecommerce-auth/internal/database"
	"ecommerce-auth/internal/handler"
	"ecommerce-auth/internal/logger"
	"ecommerce-auth/internal/metrics"
	"ecommerce-auth/internal/middleware"
	"ecommerce-auth/internal/repository"
	"ecommerce-auth/internal/router"
	"ecommerce-auth/internal/security"
	"ecommerce-auth/internal/service"
	"ecommerce-auth/internal/token"
)

type App struct {
	server          *http.Server
	shutdownTimeout time.Duration
	cleanupFuncs    []func(context.Context) error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.IsProduction(), cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("connecting to MongoDB")
	db, err := database.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("failed to ensure database indexes: %w", err)
	}

	slog.Info("connecting to Redis")
	redisClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	userRepo := repository.NewUserRepository(db.Database, hasher)
	sessionRepo := repository.NewSessionRepository(redisClient)
	authService := service.NewAuthService(userRepo, sessionRepo, issuer, hasher)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	cookies := handler.CookiePolicy{
		Secure:        cfg.IsProduction(),
		AccessMaxAge:  cfg.AccessTokenTTL,
		RefreshMaxAge: cfg.RefreshTokenTTL,
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(issuer), router.Handlers{
		Auth: handler.NewAuthHandler(authService, cookies, appMetrics, !cfg.IsProduction()),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"mongodb": db.Health,
			"redis":   redisClient.Health,
		}),
	}, appMetrics, registry)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		cleanupFuncs: []func(context.Context) error{
			func(context.Context) error {
				return redisClient.Close()
			},
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	// Drain in-flight requests before their backends go away.
	if err := a.server.Shutdown(ctx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}

	for _, cleanup := range a.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			slog.Warn("cleanup failed", "error", err)
		}
	}

	slog.Info("server stopped")
	return runErr
}
