// Package cache keeps computed analytics reports per user so repeated
// dashboard requests do not recompute every analysis over unchanged data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "flowpulse"

// ErrStale is returned by Set when the user's data changed after the
// generation passed in was read. The report is not stored.
var ErrStale = errors.New("report computed over outdated data")

// ReportCache stores JSON-encodable reports keyed by user and report name.
//
// Writers read Generation before loading the data a report is computed from
// and hand it back to Set. Invalidate bumps the generation, so a report
// computed over data that changed in the meantime is refused instead of being
// served until it expires.
type ReportCache interface {
	// Get decodes the cached report into dest and reports whether it was found
	Get(ctx context.Context, userID, name string, dest any) (bool, error)
	// Generation returns the user's current data generation
	Generation(ctx context.Context, userID string) (int64, error)
	// Set stores value if the user's generation still equals generation,
	// otherwise it returns ErrStale
	Set(ctx context.Context, userID, name string, generation int64, value any) error
	// Invalidate bumps the user's generation and drops every cached report
	Invalidate(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}

// Options configures the Redis cache
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache is a ReportCache backed by Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, opts Options, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return newRedisCache(ctx, client, opts.TTL, logger)
}

func newRedisCache(ctx context.Context, client *redis.Client, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", client.Options().Addr, err)
	}

	logger = logger.With(slog.String("component", "report_cache"))
	logger.InfoContext(ctx, "connected to redis", slog.String("addr", client.Options().Addr))
	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

func reportKey(userID, name string) string {
	return fmt.Sprintf("%s:report:%s:%s", keyPrefix, userID, name)
}

// indexKey names the set of report keys written for a user
func indexKey(userID string) string {
	return fmt.Sprintf("%s:reports:%s", keyPrefix, userID)
}

func generationKey(userID string) string {
	return fmt.Sprintf("%s:generation:%s", keyPrefix, userID)
}

// Get implements ReportCache
func (c *RedisCache) Get(ctx context.Context, userID, name string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, reportKey(userID, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", name, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", name, err)
	}
	return true, nil
}

// Generation implements ReportCache. A user without a counter is at 0.
func (c *RedisCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := readGeneration(ctx, c.client, userID)
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, userID string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set implements ReportCache. The generation check and the write run under
// WATCH, so an Invalidate landing in between aborts the write.
func (c *RedisCache) Set(ctx context.Context, userID, name string, generation int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", name, err)
	}

	key := reportKey(userID, name)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != generation {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			pipe.SAdd(ctx, indexKey(userID), key)
			if c.ttl > 0 {
				pipe.Expire(ctx, indexKey(userID), c.ttl)
			}
			return nil
		})
		return err
	}, generationKey(userID))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("cache set %s: %w", name, ErrStale)
	default:
		return fmt.Errorf("cache set %s: %w", name, err)
	}
}

// Invalidate implements ReportCache. The generation is bumped before the
// index is read, so every report written under the old generation is in the
// index and every later write under it is refused.
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Incr(ctx, generationKey(userID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}

	keys, err := c.client.SMembers(ctx, indexKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	if err := c.client.Del(ctx, append(keys, indexKey(userID))...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}

	c.logger.DebugContext(ctx, "reports invalidated",
		slog.String("user_id", userID),
		slog.Int("keys", len(keys)),
	)
	return nil
}

// Ping implements ReportCache
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close implements ReportCache
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Noop is a ReportCache that never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (Noop) Generation(context.Context, string) (int64, error)      { return 0, nil }
func (Noop) Set(context.Context, string, string, int64, any) error  { return nil }
func (Noop) Invalidate(context.Context, string) error               { return nil }
func (Noop) Ping(context.Context) error                             { return nil }
func (Noop) Close() error                                           { return nil }
