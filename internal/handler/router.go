package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biliticket/statecache/internal/config"
	"biliticket/statecache/internal/handler/middleware"
	tokenpkg "biliticket/statecache/pkg/token"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tokenManager *tokenpkg.Manager,
	cacheHandler *CacheHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Scoped cache routes
	caches := r.Group("/api/v1/caches")
	caches.Use(middleware.TokenAuth(tokenManager))
	{
		caches.GET("", cacheHandler.List)
		caches.GET("/:key/blob", cacheHandler.Download)
		caches.PUT("/:key", cacheHandler.Upload)
		caches.DELETE("/:key", cacheHandler.Delete)
	}

	// Admin routes (admin key check)
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AdminAuth(cfg.Admin.KeyHash))
	{
		admin.POST("/tokens", adminHandler.MintToken)
		admin.GET("/entries", adminHandler.ListEntries)
		admin.DELETE("/entries/:key", adminHandler.PurgeEntry)
	}

	return r
}
