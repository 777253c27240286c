package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/souqly/backend/internal/domain"
)

const phoneCodeKeyPrefix = "verification:phone:"

// PhoneCodes stores pending phone confirmation codes with their TTL.
type PhoneCodes interface {
	Set(ctx context.Context, userID uuid.UUID, code string, ttl time.Duration) error
	Get(ctx context.Context, userID uuid.UUID) (string, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type redisPhoneCodes struct {
	client redis.UniversalClient
}

func NewPhoneCodes(client redis.UniversalClient) PhoneCodes {
	return &redisPhoneCodes{client: client}
}

func (c *redisPhoneCodes) Set(ctx context.Context, userID uuid.UUID, code string, ttl time.Duration) error {
	if err := c.client.Set(ctx, phoneCodeKeyPrefix+userID.String(), code, ttl).Err(); err != nil {
		return fmt.Errorf("store phone code failed: %w", err)
	}
	return nil
}

func (c *redisPhoneCodes) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	code, err := c.client.Get(ctx, phoneCodeKeyPrefix+userID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("load phone code failed: %w", err)
	}
	return code, nil
}

func (c *redisPhoneCodes) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, phoneCodeKeyPrefix+userID.String()).Err(); err != nil {
		return fmt.Errorf("delete phone code failed: %w", err)
	}
	return nil
}
