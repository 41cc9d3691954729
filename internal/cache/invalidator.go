package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Hollando78/airgen-sub002/internal/platform/envutil"
	"github.com/Hollando78/airgen-sub002/internal/platform/logger"
)

// Invalidator evicts read-side cache entries after a committed graph
// write and announces the eviction on a pub/sub channel so other
// instances drop their local copies too.
type Invalidator struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewFromEnv connects using REDIS_ADDR. A missing address is an error;
// callers that can live without a cache use Noop instead.
func NewFromEnv(log *logger.Logger) (*Invalidator, error) {
	addr := strings.TrimSpace(envutil.Str("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.Str("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Invalidator{
		log:     log.With("service", "CacheInvalidator"),
		rdb:     rdb,
		channel: envutil.Str("REDIS_INVALIDATION_CHANNEL", "graph-invalidation"),
	}, nil
}

// invalidationKeys derives the cache keys for a scoped eviction: the
// scope itself plus one composite per nesting level, each carrying the
// full path so far. "requirements" with ("acme", "demo") yields
// requirements, requirements:acme, requirements:acme:demo. Segments
// never form keys on their own, so same-slug projects under different
// tenants cannot evict each other.
func invalidationKeys(scope string, keys ...string) []string {
	full := make([]string, 0, len(keys)+1)
	composite := scope
	full = append(full, composite)
	for _, key := range keys {
		composite += ":" + key
		full = append(full, composite)
	}
	return full
}

// Invalidate deletes the scoped keys and publishes them on the
// invalidation channel. Errors are logged and swallowed: a stale cache
// entry is acceptable, a failed write is not.
func (i *Invalidator) Invalidate(ctx context.Context, scope string, keys ...string) {
	if i == nil || i.rdb == nil {
		return
	}
	full := invalidationKeys(scope, keys...)
	if err := i.rdb.Del(ctx, full...).Err(); err != nil {
		i.log.Warn("cache invalidation DEL failed (continuing)", "scope", scope, "error", err)
	}
	if err := i.rdb.Publish(ctx, i.channel, strings.Join(full, ",")).Err(); err != nil {
		i.log.Warn("cache invalidation publish failed (continuing)", "scope", scope, "error", err)
	}
}

func (i *Invalidator) Close() error {
	if i == nil || i.rdb == nil {
		return nil
	}
	return i.rdb.Close()
}

// Noop satisfies the graph service's invalidator dependency when Redis
// is not configured.
type Noop struct{}

func (Noop) Invalidate(context.Context, string, ...string) {}
