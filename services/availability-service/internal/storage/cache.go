package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/apptslots/libs/metrics"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"github.com/redis/go-redis/v9"
)

// CachedSource keeps a read-only snapshot of another source in Redis. Any cache
// failure falls through to the backing source.
type CachedSource struct {
	next    availability.Source
	rdb     redis.Cmdable
	ttl     time.Duration
	prefix  string
	logger  *slog.Logger
	metrics metrics.Sink
}

const DefaultSnapshotTTL = 30 * time.Second

type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

func NewCachedSource(next availability.Source, rdb redis.Cmdable, logger *slog.Logger, sink metrics.Sink, cfg CacheConfig) *CachedSource {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSnapshotTTL
	}
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = "availability:snapshot"
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedSource{next: next, rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix, logger: logger, metrics: sink}
}

func (c *CachedSource) eventsKey() string    { return c.prefix + ":events" }
func (c *CachedSource) workhoursKey() string { return c.prefix + ":workhours" }

func (c *CachedSource) LoadEvents(ctx context.Context) ([]availability.Event, error) {
	return cachedLoad(ctx, c, c.eventsKey(), c.next.LoadEvents)
}

func (c *CachedSource) LoadWorkhours(ctx context.Context) ([]availability.WorkhourRule, error) {
	return cachedLoad(ctx, c, c.workhoursKey(), c.next.LoadWorkhours)
}

// Invalidate drops both snapshots so the next load reads the backing source.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.eventsKey(), c.workhoursKey()).Err()
}

func cachedLoad[T any](ctx context.Context, c *CachedSource, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if out, ok := readSnapshot[T](ctx, c, key); ok {
		c.metrics.SnapshotCache(true)
		return out, nil
	}
	c.metrics.SnapshotCache(false)

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", "key", key, "err", err)
	}
	return out, nil
}

func readSnapshot[T any](ctx context.Context, c *CachedSource, key string) ([]T, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("snapshot cache read failed", "key", key, "err", err)
		}
		return nil, false
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Warn("discarding corrupt snapshot", "key", key, "err", err)
		return nil, false
	}
	return out, true
}
