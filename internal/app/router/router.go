// Package router wires handlers and middleware into the gin engine.
package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	userhandler "user_backend/internal/feature/user/transport/handler"
	"user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/middleware"
)

// Options holds the optional parts of the router.
type Options struct {
	Logger *slog.Logger
	// RateLimiter is applied to the /users routes when non-nil.
	RateLimiter *middleware.RateLimiter
	// CORSOrigins enables CORS for the listed origins; "*" allows any origin.
	CORSOrigins []string
	// Metrics instruments every route and serves /metrics when non-nil.
	Metrics *middleware.Metrics
}

// NewRouter builds the gin engine serving the users API and the health endpoints.
func NewRouter(users *userhandler.UserHandler, health *handler.HealthHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Recovery(opts.Logger),
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// 導通確認用
	r.GET("/healthz", health.Live)
	r.HEAD("/healthz", health.Live)
	r.OPTIONS("/healthz", health.Live)
	r.GET("/readyz", health.Ready)
	r.HEAD("/readyz", health.Ready)

	g := r.Group("/users")
	if opts.RateLimiter != nil {
		g.Use(opts.RateLimiter.Middleware())
	}
	{
		g.GET("", users.List)
		g.POST("", users.Create)
		g.GET("/:id", users.Get)
		g.PUT("/:id", users.Update)
		g.DELETE("/:id", users.Delete)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
