package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/souqly/backend/internal/config"
	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/repository"
	emailProvider "github.com/souqly/backend/pkg/email"
	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	eventDedupeKeyPrefix = "verification:event:"
	statusKeyPrefix      = "verification:status:"
)

// EventStore is the slice of the redis API the notifier needs: the dedupe
// claim and the status cache invalidation.
type EventStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type statusNotifier struct {
	redis  EventStore
	users  repository.Users
	sender emailProvider.Sender
	config *config.Config
}

func newStatusNotifier(
	redis EventStore,
	users repository.Users,
	sender emailProvider.Sender,
	config *config.Config,
) *statusNotifier {
	return &statusNotifier{
		redis:  redis,
		users:  users,
		sender: sender,
		config: config,
	}
}

type statusChangedInput struct {
	Status string
	Notes  string
}

func (n *statusNotifier) Notify(ctx context.Context, event task.VerificationEvent) error {
	// The request manager emits at least once; a retried enqueue carries the
	// same event id, so a successful SETNX is the only ticket to deliver.
	dedupeKey := eventDedupeKeyPrefix + event.EventID.String()
	fresh, err := n.redis.SetNX(ctx, dedupeKey, 1, n.config.Verification.EventDedupeTTL).Result()
	if err != nil {
		return fmt.Errorf("event dedupe check failed: %w", err)
	}
	if !fresh {
		logger.Debug("duplicate verification event skipped", zap.String("event_id", event.EventID.String()))
		return nil
	}

	// A failed delivery must hand the claim back, or the redelivered task
	// would be skipped as a duplicate. A lost release at worst duplicates a
	// notification, never drops one.
	if err := n.deliver(ctx, event); err != nil {
		if delErr := n.redis.Del(ctx, dedupeKey).Err(); delErr != nil {
			logger.Warn("dedupe claim release failed",
				zap.String("event_id", event.EventID.String()), zap.Error(delErr))
		}
		return err
	}

	return nil
}

func (n *statusNotifier) deliver(ctx context.Context, event task.VerificationEvent) error {
	// Drop the cached status so the next read re-resolves from the store.
	if err := n.redis.Del(ctx, statusKeyPrefix+event.UserID.String()).Err(); err != nil {
		logger.Warn("status cache invalidation failed", zap.Error(err))
	}

	if !n.config.Email.Enabled {
		return nil
	}

	user, err := n.users.GetOneByID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("load user for notification failed: %w", err)
	}
	if !user.Email.Valid || user.Email.String == "" {
		return nil
	}

	sendInput := emailProvider.SendEmailInput{
		Subject: "Your verification status changed",
		To:      user.Email.String,
	}
	templateInput := statusChangedInput{Status: string(event.Status), Notes: event.Notes}
	if err := sendInput.GenerateBodyFromHTML(n.config.Email.Templates.StatusChanged, templateInput); err != nil {
		return fmt.Errorf("generate notification email failed: %w", err)
	}

	if err := n.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send notification email failed: %w", err)
	}

	return nil
}
