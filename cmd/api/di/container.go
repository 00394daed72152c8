package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/cmd/api/infrastructure"
	"users-api/internal/adapter/db/gormrepo"
	"users-api/internal/adapter/db/pool"
	ginhandler "users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	ginrouter "users-api/internal/adapter/gin/router"
	"users-api/internal/config"
	"users-api/internal/usecase/user"
	redisclient "users-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	TracerProvider *sdktrace.TracerProvider // nil when tracing is disabled
	Pool           *pool.Manager
	RedisClient    *redisclient.Client
	UserUC         user.UserUsecase
	RateLimiter    *middleware.RateLimiter
	GinHandler     *ginhandler.UserHandler
	Router         http.Handler
}

// NewContainer creates and initializes all application dependencies. No
// database connection is made here; the pool manager connects on Start.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	tp, err := infrastructure.NewTracerProvider(cfg, l)
	if err != nil {
		return nil, err
	}

	dbPool := pool.NewManager(
		func(ctx context.Context) (*gorm.DB, error) {
			return infrastructure.NewDatabase(ctx, cfg, l)
		},
		time.Duration(cfg.DB.ConnectRetrySeconds)*time.Second,
		l.Named("pool"),
	)

	var repoOpts []gormrepo.Option
	if tp != nil {
		repoOpts = append(repoOpts, gormrepo.WithTracerProvider(tp))
	}
	repo := gormrepo.NewUserRepo(dbPool, l, repoOpts...)
	userUC := user.New(repo, l)
	ginHandler := ginhandler.NewUserHandler(userUC, l)

	c := &Container{
		Config:         cfg,
		Logger:         l,
		TracerProvider: tp,
		Pool:           dbPool,
		UserUC:         userUC,
		GinHandler:     ginHandler,
	}

	if cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			// rate limiting is optional, serve without it
			l.Warn("rate limiting disabled", zap.Error(err))
		} else {
			c.RedisClient = rdb
			c.RateLimiter = middleware.NewRateLimiter(
				rdb.Client,
				middleware.RateLimiterConfig{
					Enabled:           true,
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
				},
				l.Named("ratelimit"),
			)
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	c.Router = ginrouter.SetupRouter(ginHandler, dbPool, ginrouter.Options{
		AllowedOrigin: cfg.CORS.AllowedOrigin,
		RateLimiter:   c.RateLimiter,
	}, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.Pool != nil {
		if err := c.Pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database pool: %w", err))
		}
	}

	return errors.Join(errs...)
}
