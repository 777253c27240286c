package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

const statusKeyPrefix = "verification:status:"

// StatusCache is a disposable read replica of the resolved verification
// status. It is invalidated on every mutation and is never a second source
// of truth: read and write failures are logged and ignored.
type StatusCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]byte, bool)
	Set(ctx context.Context, userID uuid.UUID, payload []byte)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type redisStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewStatusCache(client redis.UniversalClient, ttl time.Duration) StatusCache {
	return &redisStatusCache{client: client, ttl: ttl}
}

func (c *redisStatusCache) Get(ctx context.Context, userID uuid.UUID) ([]byte, bool) {
	payload, err := c.client.Get(ctx, statusKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("status cache get failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (c *redisStatusCache) Set(ctx context.Context, userID uuid.UUID, payload []byte) {
	if err := c.client.Set(ctx, statusKeyPrefix+userID.String(), payload, c.ttl).Err(); err != nil {
		logger.Debug("status cache set failed", zap.Error(err))
	}
}

func (c *redisStatusCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, statusKeyPrefix+userID.String()).Err(); err != nil {
		logger.Debug("status cache invalidate failed", zap.Error(err))
	}
}
