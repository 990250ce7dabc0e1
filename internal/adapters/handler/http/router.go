package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mna11/ReadMe3D/internal/adapters/handler/http/middleware"
	"github.com/mna11/ReadMe3D/internal/adapters/metrics"
	"github.com/mna11/ReadMe3D/internal/core/services"
)

const (
	defaultRateLimit  = 100
	defaultRateWindow = time.Minute
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDependencies struct {
	CityHandler     *CityHandler
	SnapshotHandler *SnapshotHandler
	TokenService    *services.TokenService
	Metrics         *metrics.Metrics
	DB              Pinger
	Redis           *redis.Client
	RateLimit       int
	RateWindow      time.Duration
	StartTime       time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(deps.Metrics.Middleware())

	if deps.Redis != nil {
		limit, window := deps.RateLimit, deps.RateWindow
		if limit <= 0 {
			limit = defaultRateLimit
		}
		if window <= 0 {
			window = defaultRateWindow
		}
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, limit, window))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	apiV1 := router.Group("/api/v1")

	deps.CityHandler.RegisterRoutes(apiV1)

	if deps.SnapshotHandler != nil && deps.TokenService != nil {
		protected := apiV1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.TokenService, services.ScopeIngest))
		{
			deps.SnapshotHandler.RegisterRoutes(protected)
		}
	}

	return router
}
