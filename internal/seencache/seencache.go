package seencache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kwondev/buyee-mercari-scraper/internal/config"
)

const seenKeyPrefix = "seen:"

// Cache is an optional Redis write-through over the run's in-memory
// seen-set. It lets consecutive runs skip URLs that were accepted
// recently even before the sheet read completes, and survives process
// restarts between sheet syncs.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    cfg.SeenTTL,
		logger: slog.Default().With("component", "seencache"),
	}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Mark records an accepted item URL with the configured expiry.
func (c *Cache) Mark(ctx context.Context, url string) error {
	return c.client.SetEx(ctx, seenKeyPrefix+url, "1", c.ttl).Err()
}

// IsSeen reports whether an item URL was accepted recently.
func (c *Cache) IsSeen(ctx context.Context, url string) (bool, error) {
	n, err := c.client.Exists(ctx, seenKeyPrefix+url).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
