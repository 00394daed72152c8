package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	"users-api/pkg/logger"
)

// Banner is served on GET /
const Banner = "Users CRUD API with Go, Gin, GORM and Docker"

// PoolStatus exposes the database pool readiness to the HTTP layer
type PoolStatus interface {
	Ready() bool
	Stats() (sql.DBStats, bool)
}

// Options configures SetupRouter
type Options struct {
	AllowedOrigin string
	RateLimiter   *middleware.RateLimiter // nil disables rate limiting
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	pool PoolStatus,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(opts.RateLimiter.Middleware())

	// Health checks are answered even while the pool is initializing
	health := router.Group("/health")
	{
		health.GET("/live", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "alive"})
		})
		health.GET("/ready", readyHandler(pool))
	}

	api := router.Group("/", middleware.Readiness(pool))
	{
		api.GET("/", func(c *gin.Context) {
			c.String(http.StatusOK, Banner)
		})

		users := api.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})

	return router
}

func readyHandler(pool PoolStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, ok := pool.Stats()
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "initializing",
				"message": middleware.MsgNotReady,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"pool": gin.H{
				"max_open":      stats.MaxOpenConnections,
				"open":          stats.OpenConnections,
				"in_use":        stats.InUse,
				"idle":          stats.Idle,
				"wait_count":    stats.WaitCount,
				"wait_duration": stats.WaitDuration.String(),
			},
		})
	}
}
