package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "campaigns:report:version"
	// InvalidationChannel carries the new cache version after a bump.
	InvalidationChannel = "campaigns.report.bump"
	// versionMemoTTL bounds how long a listening process trusts its memo
	// before reading the version from Redis again.
	versionMemoTTL = 30 * time.Second
)

// Cache stores built reports in Redis under a global version. Bumping the
// version orphans every cached report at once. A nil Cache or a Cache
// without a client calls the loader every time.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time

	listening atomic.Bool
	seen      atomic.Int64
	seenAt    atomic.Int64
}

// NewCache wires the cache to a Redis client.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl, now: time.Now}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current version, initialising it to 1. While
// ListenForInvalidation runs, a recently seen version is served from memory.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	if ver, ok := c.memo(); ok {
		return ver, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	switch {
	case errors.Is(err, redis.Nil), err == nil && ver <= 0:
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		if ver, err = c.client.Get(ctx, cacheVersionKey).Int64(); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	}
	c.remember(ver, true)
	return ver, nil
}

func (c *Cache) memo() (int64, bool) {
	if !c.listening.Load() {
		return 0, false
	}
	ver := c.seen.Load()
	if ver <= 0 || c.now().Sub(time.Unix(0, c.seenAt.Load())) > versionMemoTTL {
		return 0, false
	}
	return ver, true
}

// remember records ver unless a newer version is already known. Redis reads
// pass authoritative so a reset key is picked up on the next refresh.
func (c *Cache) remember(ver int64, authoritative bool) bool {
	for {
		cur := c.seen.Load()
		if !authoritative && cur >= ver {
			return false
		}
		if c.seen.CompareAndSwap(cur, ver) {
			c.seenAt.Store(c.now().UnixNano())
			return true
		}
	}
}

// BuildKey joins parts and appends the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON decodes the cached value at key into dest, or runs loader,
// stores its JSON and decodes that. It reports whether the value came
// from Redis.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) (bool, error) {
	if loader == nil {
		return false, errors.New("cache: loader required")
	}
	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return true, json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return false, err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return false, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return false, err
		}
	}
	return false, json.Unmarshal(raw, dest)
}

// Bump increments the version and announces it on InvalidationChannel.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return 0, err
	}
	c.remember(ver, false)
	return ver, c.client.Publish(ctx, InvalidationChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to InvalidationChannel and returns once
// the subscription is confirmed. Until ctx is cancelled, announced versions
// feed the in-memory version used by BuildKey, so requests skip the Redis
// read and switch to new keys as soon as another instance bumps. Announcements
// older than the known version are ignored.
func (c *Cache) ListenForInvalidation(ctx context.Context, logger *slog.Logger) error {
	if !c.enabled() {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := c.client.Subscribe(ctx, InvalidationChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	c.listening.Store(true)
	go func() {
		defer func() {
			c.listening.Store(false)
			_ = pubsub.Close()
		}()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil || ver <= 0 {
					logger.Warn("ignoring cache bump", slog.String("payload", msg.Payload))
					continue
				}
				if c.remember(ver, false) {
					logger.Info("report cache bumped", slog.Int64("version", ver))
				}
			}
		}
	}()
	return nil
}

func reportKey(fingerprint, locale string) string {
	return strings.Join([]string{"campaigns", "report", fingerprint, locale}, ":")
}
