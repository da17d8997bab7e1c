package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"biliticket/statecache/internal/config"
	"biliticket/statecache/internal/handler"
	"biliticket/statecache/internal/model"
	"biliticket/statecache/internal/repository"
	"biliticket/statecache/internal/service"
	tokenpkg "biliticket/statecache/pkg/token"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize blob store (Redis or in-memory)
	var blobStore repository.BlobStore
	switch cfg.Blob.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		blobStore = repository.NewRedisBlobStore(redisClient)
		logger.Info("using Redis blob store")
	case "memory":
		blobStore = repository.NewMemoryBlobStore()
		logger.Info("using in-memory blob store")
	default:
		logger.Fatal("unknown blob backend", zap.String("backend", cfg.Blob.Backend))
	}

	// 6. Initialize repositories and services
	entryRepo := repository.NewPGEntryRepository(db)
	cacheService := service.NewCacheService(
		entryRepo, blobStore,
		cfg.Cache.MaxEntrySize, cfg.Cache.EntryTTL,
	)

	// 7. Initialize token manager
	tokenManager := tokenpkg.NewManager(
		cfg.Token.SigningKey,
		cfg.Token.Issuer,
		cfg.Token.DefaultTTL,
	)

	// 8. Initialize handlers
	cacheHandler := handler.NewCacheHandler(cacheService, cfg.Cache.MaxEntrySize)
	adminHandler := handler.NewAdminHandler(cacheService, tokenManager)

	// 9. Setup router
	router := handler.SetupRouter(cfg, logger, tokenManager, cacheHandler, adminHandler)

	// 10. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 11. Start expired-entry janitor
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runJanitor(janitorCtx, cacheService, cfg.Cache.CleanupInterval, logger)

	// 12. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

// runJanitor sweeps expired metadata rows; the blob store evicts payloads on
// its own via TTL.
func runJanitor(ctx context.Context, cacheService service.CacheService, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cacheService.CleanupExpired(ctx)
			if err != nil {
				logger.Warn("expired entry cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("expired entries removed", zap.Int64("count", n))
			}
		}
	}
}
