package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/md-rashed-zaman/apptslots/libs/config"
	"github.com/md-rashed-zaman/apptslots/libs/db"
	"github.com/md-rashed-zaman/apptslots/libs/kafkax"
	"github.com/md-rashed-zaman/apptslots/libs/metrics"
	"github.com/md-rashed-zaman/apptslots/libs/runtime"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/storage"
	"github.com/redis/go-redis/v9"
)

type dataSource struct {
	source availability.Source
	cache  *storage.CachedSource
	pool   *db.Pool
}

func (d dataSource) close() {
	d.pool.Close()
}

// openSource builds the backing source selected by DATA_SOURCE and wraps it in
// the Redis snapshot cache when Redis is configured.
func openSource(ctx context.Context, logger *slog.Logger, rdb *redis.Client, sink metrics.Sink) (dataSource, error) {
	var out dataSource
	switch kind := strings.ToLower(config.String("DATA_SOURCE", "file")); kind {
	case "file":
		out.source = storage.NewFileSource(
			config.String("EVENTS_FILE", "data/events.json"),
			config.String("WORKHOURS_FILE", "data/workhours.json"),
		)
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return out, err
		}
		pool, err := db.Open(ctx, dbURL, db.Options{})
		if err != nil {
			return out, fmt.Errorf("db connection failed: %w", err)
		}
		out.pool = pool
		out.source = storage.NewPostgresSource(pool)
	default:
		return out, fmt.Errorf("DATA_SOURCE must be file or postgres (got %q)", kind)
	}

	if rdb != nil {
		ttl, err := config.Duration("SNAPSHOT_TTL", storage.DefaultSnapshotTTL)
		if err != nil {
			out.close()
			return out, err
		}
		out.cache = storage.NewCachedSource(out.source, rdb, logger, sink, storage.CacheConfig{TTL: ttl})
		out.source = out.cache
	}
	return out, nil
}

func readyChecks(src dataSource, rdb *redis.Client, brokers []string) []runtime.ReadyCheck {
	var checks []runtime.ReadyCheck
	if src.pool != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(src.pool)})
	}
	if rdb != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if len(brokers) > 0 {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	return checks
}
