// statectl restores, saves or clears the persisted state blob for a prefix.
// Connection settings come from STATECACHE_ENDPOINT, STATECACHE_TOKEN and
// STATECACHE_CACHE_PREFIX.
//
// Usage:
//
//	statectl restore
//	statectl save <blob>
//	statectl clear
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"biliticket/statecache/internal/backend"
	"biliticket/statecache/internal/config"
	"biliticket/statecache/internal/statestore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := backend.NewHTTPClient(cfg.Endpoint, cfg.Token)
	store := statestore.New(client, statestore.Options{CachePrefix: cfg.CachePrefix}, logger)

	ctx := context.Background()
	switch os.Args[1] {
	case "restore":
		fmt.Println(store.Restore(ctx))
	case "save":
		if len(os.Args) < 3 {
			usage()
		}
		if err := store.Save(ctx, os.Args[2]); err != nil {
			logger.Fatal("save failed", zap.Error(err))
		}
	case "clear":
		if err := store.Save(ctx, ""); err != nil {
			logger.Fatal("clear failed", zap.Error(err))
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: statectl restore | save <blob> | clear")
	os.Exit(2)
}
