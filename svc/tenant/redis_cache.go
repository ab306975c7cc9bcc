package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stewardhq/steward/pkg/logger"
	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// RedisConfig configures the connection to the shared metadata cache.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL in the format "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts is the number of connection attempts before giving up.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`            // RetryInterval is the wait between connection attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`          // ConnectTimeout bounds the whole connect, retries included.
}

// ConnectRedis establishes the Redis client with retries, pinging before
// handing it out so a dead cache fails at startup rather than on the first
// request.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}

// RedisCache is a tenant metadata cache shared between application
// instances, implementing the middleware's Cache interface. Entries carry
// the decrypted database credential, so the Redis instance must be private
// to the deployment.
type RedisCache struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithKeyPrefix overrides the key namespace, default "tenant:".
func WithKeyPrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheLogger sets the logger for cache diagnostics.
func WithCacheLogger(log *slog.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		if log != nil {
			c.log = log
		}
	}
}

func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: "tenant:",
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string) (*tenantpkg.Tenant, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "tenant cache read failed", logger.Error(err))
		}
		return nil, false
	}

	t, err := decodeCachedTenant(raw)
	if err != nil {
		// A stale or corrupted entry falls through to the registry and
		// gets rewritten on the next Set.
		c.log.WarnContext(ctx, "tenant cache entry corrupted, dropping", logger.Error(err))
		c.client.Del(ctx, c.prefix+key)
		return nil, false
	}
	return t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, t *tenantpkg.Tenant, ttl time.Duration) {
	raw, err := encodeCachedTenant(t)
	if err != nil {
		c.log.WarnContext(ctx, "tenant cache encode failed", logger.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache write failed", logger.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.WarnContext(ctx, "tenant cache delete failed", logger.Error(err))
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// cachedTenant is the wire shape of a cache entry. Tenant hides its
// connection fields from JSON on purpose; the cache needs them back, hence
// the explicit envelope.
type cachedTenant struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	DatabaseURL string    `json:"database_url"`
	Credential  string    `json:"credential,omitempty"`
	Plan        string    `json:"plan"`
	Features    []string  `json:"features,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func encodeCachedTenant(t *tenantpkg.Tenant) ([]byte, error) {
	return json.Marshal(cachedTenant{
		ID:          t.ID.String(),
		Slug:        t.Slug,
		Name:        t.Name,
		DatabaseURL: t.DatabaseURL,
		Credential:  t.Credential,
		Plan:        t.Plan,
		Features:    t.Features,
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
	})
}

func decodeCachedTenant(raw []byte) (*tenantpkg.Tenant, error) {
	var ct cachedTenant
	if err := json.Unmarshal(raw, &ct); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(ct.ID)
	if err != nil {
		return nil, err
	}
	return &tenantpkg.Tenant{
		ID:          id,
		Slug:        ct.Slug,
		Name:        ct.Name,
		DatabaseURL: ct.DatabaseURL,
		Credential:  ct.Credential,
		Plan:        ct.Plan,
		Features:    ct.Features,
		Active:      ct.Active,
		CreatedAt:   ct.CreatedAt,
	}, nil
}
