package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/storage"
)

// wireRedis returns nil when REDIS_ADDR is unset; the revoked-token cache
// is optional and auth falls back to the database.
func wireRedis(log *logger.Logger) (*goredis.Client, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis token cache connected", "addr", addr)
	return rdb, nil
}

func wireStorage(log *logger.Logger, cfg Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocal(log, cfg.LocalStoreDir, cfg.LocalStoreURL)
	case "gcs":
		return storage.NewGCS(log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
