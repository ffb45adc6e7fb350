package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gridcast-io/gridcast/internal/application"
	"github.com/gridcast-io/gridcast/internal/infrastructure/logging"
)

// RedisReportCache stores serialized reports in redis with a TTL.
// a cache failure is logged and treated as a miss: the computation is
// always the source of truth.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisReportCache creates a report cache on an established client.
func NewRedisReportCache(rc *RedisClient, ttl time.Duration, logger *logging.Logger) *RedisReportCache {
	return &RedisReportCache{
		client: rc.Client(),
		ttl:    ttl,
		logger: logger.WithComponent("report_cache"),
	}
}

// Get retrieves a cached report. any failure reads as a miss.
func (c *RedisReportCache) Get(ctx context.Context, key string) (*application.Report, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var report application.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		c.logger.Warn("cached report unreadable, discarding",
			"key", key,
			"error", err.Error(),
		)
		c.client.Del(ctx, key)
		return nil, false
	}
	return &report, true
}

// Set stores a report, best-effort.
func (c *RedisReportCache) Set(ctx context.Context, key string, report *application.Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report not cacheable",
			"key", key,
			"error", err.Error(),
		)
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		// log but don't fail - the computed report is already on its way out
		c.logger.Warn("report cache write failed",
			"key", key,
			"error", err.Error(),
		)
	}
}

// MemoryReportCache is a bounded in-process report cache for deployments
// without redis. evicts the oldest entry once full; eviction never
// affects correctness.
type MemoryReportCache struct {
	mu       sync.Mutex
	capacity int
	keys     []string
	entries  map[string]*application.Report
}

// NewMemoryReportCache creates a bounded in-memory report cache.
func NewMemoryReportCache(capacity int) *MemoryReportCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryReportCache{
		capacity: capacity,
		entries:  make(map[string]*application.Report, capacity),
	}
}

// Get retrieves a cached report.
func (c *MemoryReportCache) Get(_ context.Context, key string) (*application.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	report, ok := c.entries[key]
	return report, ok
}

// Set stores a report, evicting the oldest entry when full.
func (c *MemoryReportCache) Set(_ context.Context, key string, report *application.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.keys) >= c.capacity {
			oldest := c.keys[0]
			c.keys = c.keys[1:]
			delete(c.entries, oldest)
		}
		c.keys = append(c.keys, key)
	}
	c.entries[key] = report
}
