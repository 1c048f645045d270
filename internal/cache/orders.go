package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/tms-dashboard/internal/config"
	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

const orderSnapshotKeyPrefix = "tms:orders"

// OrderSnapshot is what gets cached for one fetched date range.
type OrderSnapshot struct {
	Orders      []domain.OrderRecord `json:"orders"`
	FailedWeeks []string             `json:"failed_weeks,omitempty"`
	FetchedAt   time.Time            `json:"fetched_at"`
}

// OrderSnapshotCache stores fetched order snapshots by date range.
type OrderSnapshotCache interface {
	GetSnapshot(ctx context.Context, start, end time.Time) (*OrderSnapshot, bool, error)
	SetSnapshot(ctx context.Context, start, end time.Time, snap *OrderSnapshot) error
	InvalidateAll(ctx context.Context) error
}

type redisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopOrderCache struct{}

// NewOrderSnapshotCache returns a redis-backed cache, or a no-op one when
// caching is disabled.
func NewOrderSnapshotCache(cfg config.CacheConfig) (OrderSnapshotCache, error) {
	if !cfg.Enabled {
		return &noopOrderCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisOrderCache{client: client, ttl: ttl}, nil
}

func NewNoopOrderSnapshotCache() OrderSnapshotCache {
	return &noopOrderCache{}
}

func (c *redisOrderCache) GetSnapshot(ctx context.Context, start, end time.Time) (*OrderSnapshot, bool, error) {
	payload, err := c.client.Get(ctx, buildOrderSnapshotKey(start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snap OrderSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false, fmt.Errorf("decode order snapshot cache: %w", err)
	}

	return &snap, true, nil
}

func (c *redisOrderCache) SetSnapshot(ctx context.Context, start, end time.Time, snap *OrderSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode order snapshot cache: %w", err)
	}

	if err := c.client.Set(ctx, buildOrderSnapshotKey(start, end), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisOrderCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, orderSnapshotKeyPrefix, scanBatchSize)
}

func (n *noopOrderCache) GetSnapshot(context.Context, time.Time, time.Time) (*OrderSnapshot, bool, error) {
	return nil, false, nil
}

func (n *noopOrderCache) SetSnapshot(context.Context, time.Time, time.Time, *OrderSnapshot) error {
	return nil
}

func (n *noopOrderCache) InvalidateAll(context.Context) error {
	return nil
}

// buildOrderSnapshotKey hashes the day range; times of day are ignored.
func buildOrderSnapshotKey(start, end time.Time) string {
	raw := "start=" + start.Format("2006-01-02") + "|end=" + end.Format("2006-01-02")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", orderSnapshotKeyPrefix, hex.EncodeToString(hash[:]))
}
