package kvstore

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/config"
	"github.com/go-storefront-api/internal/infrastructure/dynamo"
)

const (
	BackendRedis  = "redis"
	BackendDynamo = "dynamodb"
	BackendMemory = "memory"
)

// Select builds the configured primary backend and checks that it is
// reachable. When it is not, the in-process MemoryStore is returned instead
// and used for the life of the process. The second return value names the
// backend actually in use.
func Select(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, string) {
	switch cfg.KVBackend {
	case BackendMemory:
		log.Warn("using in-process verification store; sessions are not shared between instances")
		return NewMemoryStore(), BackendMemory

	case BackendDynamo:
		bctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout*5)
		defer cancel()
		client, err := dynamo.NewClient(bctx, cfg)
		if err != nil {
			log.Warn("dynamodb client unavailable, falling back to in-process store", zap.Error(err))
			return NewMemoryStore(), BackendMemory
		}
		if err := dynamo.Bootstrap(bctx, client, cfg.DynamoTable, log); err != nil {
			log.Warn("dynamodb bootstrap failed", zap.String("table", cfg.DynamoTable), zap.Error(err))
		}
		return choose(ctx, dynamo.NewStore(client, cfg.DynamoTable), BackendDynamo, cfg.StoreTimeout, log)

	default:
		return choose(ctx, NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Timeout:  cfg.StoreTimeout,
		}), BackendRedis, cfg.StoreTimeout, log)
	}
}

func choose(ctx context.Context, primary Store, name string, timeout time.Duration, log *zap.Logger) (Store, string) {
	if p, ok := primary.(Pinger); ok {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := p.Ping(pctx); err != nil {
			log.Warn("verification store unreachable, falling back to in-process store",
				zap.String("backend", name), zap.Error(err))
			if c, ok := primary.(io.Closer); ok {
				_ = c.Close()
			}
			return NewMemoryStore(), BackendMemory
		}
	}
	log.Info("verification store ready", zap.String("backend", name))
	return primary, name
}
