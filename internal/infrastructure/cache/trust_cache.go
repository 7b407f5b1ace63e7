package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

const trustKeyPrefix = "tde:trust:"

// DefaultTrustTTL bounds how long a flagger's tier is served from cache
// after enrollment changes.
const DefaultTrustTTL = 15 * time.Minute

// TrustSource is the authoritative trusted-flagger registry the cache reads
// through to.
type TrustSource interface {
	TrustLevelFor(ctx context.Context, claimantEmail string) (notice.TrustLevel, error)
}

// TrustCache is a read-through Redis cache in front of the trusted-flagger
// registry. Cache failures degrade to a direct source lookup; they never
// fail a trust resolution on their own.
type TrustCache struct {
	client *redis.Client
	source TrustSource
	ttl    time.Duration
	logger *zap.Logger
}

func NewTrustCache(client *redis.Client, source TrustSource, ttl time.Duration, logger *zap.Logger) *TrustCache {
	if ttl <= 0 {
		ttl = DefaultTrustTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrustCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *TrustCache) TrustLevelFor(ctx context.Context, claimantEmail string) (notice.TrustLevel, error) {
	key := trustKeyPrefix + strings.ToLower(strings.TrimSpace(claimantEmail))

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return notice.TrustLevel(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("trust cache read failed, falling through to registry",
			zap.String("claimant_email", claimantEmail),
			zap.Error(err))
	}

	level, err := c.source.TrustLevelFor(ctx, claimantEmail)
	if err != nil {
		return "", err
	}

	if setErr := c.client.Set(ctx, key, string(level), c.ttl).Err(); setErr != nil {
		c.logger.Warn("trust cache write failed",
			zap.String("claimant_email", claimantEmail),
			zap.Error(setErr))
	}
	return level, nil
}

// Invalidate drops the cached tier for a claimant, forcing the next lookup
// back to the registry. Used after enrollment changes.
func (c *TrustCache) Invalidate(ctx context.Context, claimantEmail string) error {
	key := trustKeyPrefix + strings.ToLower(strings.TrimSpace(claimantEmail))
	return c.client.Del(ctx, key).Err()
}
