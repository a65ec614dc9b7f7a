package qrimage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vladan-gibisoft/MC73/internal/ipsqr"
)

const defaultCachePrefix = "uplatnice:qr:"

// CachedProvider keeps rendered images in Redis keyed by payload content.
// Cache failures never fail a fetch.
type CachedProvider struct {
	next   Provider
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// CacheOption configures the cache.
type CacheOption func(*CachedProvider)

// WithCachePrefix overrides the key prefix.
func WithCachePrefix(prefix string) CacheOption {
	return func(c *CachedProvider) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheLogger sets the logger used for cache errors.
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *CachedProvider) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedProvider wraps next with a Redis cache.
func NewCachedProvider(next Provider, rdb redis.Cmdable, ttl time.Duration, opts ...CacheOption) (*CachedProvider, error) {
	if next == nil {
		return nil, errors.New("qrimage cache: nil provider")
	}
	if rdb == nil {
		return nil, errors.New("qrimage cache: nil redis client")
	}
	if ttl <= 0 {
		return nil, errors.New("qrimage cache: ttl must be positive")
	}
	c := &CachedProvider{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		prefix: defaultCachePrefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns a cached image or delegates to the wrapped provider.
func (c *CachedProvider) Fetch(ctx context.Context, payload ipsqr.Payload, size int) ([]byte, error) {
	key := c.prefix + CacheKey(payload, size)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(cached) > 0:
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn("qr cache read failed", zap.String("key", key), zap.Error(err))
	}

	img, err := c.next.Fetch(ctx, payload, size)
	if err != nil {
		return nil, err
	}
	if err := c.rdb.Set(ctx, key, img, c.ttl).Err(); err != nil {
		c.logger.Warn("qr cache write failed", zap.String("key", key), zap.Error(err))
	}
	return img, nil
}

// CacheKey derives a stable key from the payload and image size.
func CacheKey(payload ipsqr.Payload, size int) string {
	data, _ := json.Marshal(payload)
	sum := sha256.New()
	sum.Write(data)
	sum.Write([]byte("|" + strconv.Itoa(size)))
	return hex.EncodeToString(sum.Sum(nil))
}
