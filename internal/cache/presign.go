package cache

import (
	"context"
	"errors"
	"time"

	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/redis/go-redis/v9"
)

const presignKeyPrefix = "presign:"

// PresignCache memoizes presigned read URLs so repeated avatar fetches do
// not re-sign the same object. Entries live for half the URL expiry, which
// guarantees a cached URL is always still valid when served.
//
// A nil PresignCache is safe to use and behaves as a cache that never hits,
// so the avatar pipeline works unchanged when Redis is not configured.
type PresignCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewPresignCache builds a presign cache on top of the shared Redis client
func NewPresignCache(rc *RedisClient, presignExpiry time.Duration) *PresignCache {
	ttl := presignExpiry / 2
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PresignCache{redis: rc, ttl: ttl}
}

// Get returns the cached presigned URL for an object key, if present
func (p *PresignCache) Get(ctx context.Context, objectKey string) (string, bool) {
	if p == nil || p.redis == nil {
		return "", false
	}

	url, err := p.redis.Get(ctx, presignKeyPrefix+objectKey)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WarnWithFields("Presign cache read failed", err,
				logger.WithObjectKey(objectKey),
			)
		}
		return "", false
	}

	return url, true
}

// Set caches a presigned URL. Failures are logged and swallowed since the
// cache is purely an optimization.
func (p *PresignCache) Set(ctx context.Context, objectKey, url string) {
	if p == nil || p.redis == nil {
		return
	}

	if err := p.redis.SetEx(ctx, presignKeyPrefix+objectKey, url, p.ttl); err != nil {
		logger.WarnWithFields("Presign cache write failed", err,
			logger.WithObjectKey(objectKey),
		)
	}
}

// Invalidate drops cached URLs for the given object keys
func (p *PresignCache) Invalidate(ctx context.Context, objectKeys ...string) {
	if p == nil || p.redis == nil || len(objectKeys) == 0 {
		return
	}

	prefixed := make([]string, 0, len(objectKeys))
	for _, k := range objectKeys {
		if k == "" {
			continue
		}
		prefixed = append(prefixed, presignKeyPrefix+k)
	}
	if len(prefixed) == 0 {
		return
	}

	if err := p.redis.Del(ctx, prefixed...); err != nil {
		logger.WarnWithFields("Presign cache invalidation failed", err)
	}
}
