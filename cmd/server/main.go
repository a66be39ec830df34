package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"user_backend/internal/app/di"
	"user_backend/internal/app/router"
	userhandler "user_backend/internal/feature/user/transport/handler"
	userusecase "user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/config"
	"user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/middleware"
	infraredis "user_backend/internal/platform/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting user service", "env", cfg.Env, "store", cfg.Store.Driver)

	if cfg.Env == envProd {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	store, err := di.NewUserStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		if !errors.Is(err, infraredis.ErrRedisDisabled) {
			log.Warn("Redis unavailable. Running without cache.", "error", err)
		}
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository → Usecase → Handler
	repo := di.WithCache(store.Repository(), rdb, cfg.Redis.TTL)
	usersH := userhandler.NewUserHandler(userusecase.NewUserUsecase(repo))
	healthH := handler.NewHealthHandler(store)

	opts := router.Options{
		Logger:      log,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}
	if cfg.RateLimit.Enabled() {
		opts.RateLimiter = middleware.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if !cfg.HTTP.MetricsDisabled {
		opts.Metrics = middleware.NewMetrics()
	}
	r := router.NewRouter(usersH, healthH, opts)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listen start", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
