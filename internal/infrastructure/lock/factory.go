// Package lock provides the per-key lockers that serialize channel sync per order.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/go-zookeeper/zk"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CloseFunc releases the resources held by a locker backend
type CloseFunc func() error

// NewLocker builds the locker selected by cfg.Lock.Backend
func NewLocker(cfg *config.Config, logger *zap.Logger) (shared.Locker, CloseFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch cfg.Lock.Backend {
	case config.LockBackendMemory, "":
		logger.Info("Using in-memory order locks")
		return NewMemoryLocker(), noop, nil

	case config.LockBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Using redis order locks",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Lock.TTL))
		return NewRedisLocker(client, cfg.Lock.KeyPrefix, cfg.Lock.TTL), client.Close, nil

	case config.LockBackendZookeeper:
		conn, _, err := zk.Connect(cfg.Lock.ZookeeperServers, cfg.Lock.ZookeeperTimeout,
			zk.WithLogger(zap.NewStdLog(logger.Named("zookeeper"))))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
		}
		logger.Info("Using zookeeper order locks",
			zap.Strings("servers", cfg.Lock.ZookeeperServers),
			zap.String("root", cfg.Lock.ZookeeperRoot))
		return NewZookeeperLocker(conn, cfg.Lock.ZookeeperRoot), func() error {
			conn.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown lock backend %q", cfg.Lock.Backend)
	}
}

// OrderKey is the lock key for one sales order
func OrderKey(orderID fmt.Stringer) string {
	return "sales_order:" + orderID.String()
}
