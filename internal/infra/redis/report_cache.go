package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrukv/walletbook/pkg/logger"
)

const (
	// DefaultTTL bounds how stale a cached report can get even without
	// invalidation.
	DefaultTTL = 5 * time.Minute

	// KeyPrefix is the prefix for report cache keys
	KeyPrefix = "report:"
)

// ReportCache is a Redis-backed cache for per-user report payloads. The
// ledger service invalidates it on every mutation, so entries only
// survive between changes to a user's history.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewReportCache creates a new report cache
func NewReportCache(client *redis.Client, log *logger.Logger) *ReportCache {
	return NewReportCacheWithTTL(client, DefaultTTL, log)
}

// NewReportCacheWithTTL creates a new report cache with custom TTL
func NewReportCacheWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "report_cache"),
	}
}

func key(userID uuid.UUID, kind string) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefix, userID, kind)
}

// Get retrieves a cached report and unmarshals it into dest. The second
// return reports whether the entry existed.
func (c *ReportCache) Get(ctx context.Context, userID uuid.UUID, kind string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, key(userID, kind)).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "user_id", userID, "kind", kind)
		return false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "user_id", userID, "kind", kind, "error", err)
		return false, fmt.Errorf("failed to get cached report: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	c.logger.Debug("cache hit", "user_id", userID, "kind", kind)
	return true, nil
}

// Set stores a report payload under the user's key
func (c *ReportCache) Set(ctx context.Context, userID uuid.UUID, kind string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, key(userID, kind), data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "user_id", userID, "kind", kind, "error", err)
		return fmt.Errorf("failed to set cached report: %w", err)
	}

	return nil
}

// Invalidate drops all cached reports for a user. Failures are logged
// only: a stale entry expires via TTL and must never fail a mutation.
func (c *ReportCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	pattern := fmt.Sprintf("%s%s:*", KeyPrefix, userID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("cache error", "operation", "invalidate_scan", "user_id", userID, "error", err)
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("cache error", "operation", "invalidate", "user_id", userID, "error", err)
		return
	}

	c.logger.Debug("reports invalidated", "user_id", userID, "keys", len(keys))
}
