package worker

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/souqly/backend/internal/config"
	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/repository"
	emailProvider "github.com/souqly/backend/pkg/email"
)

type Workers struct {
	Notifier Notifier
}

type Deps struct {
	Redis         redis.UniversalClient
	Users         repository.Users
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

// Notifier fans a verification status event out to its consumers. Delivery
// is at-least-once; implementations deduplicate by event id.
type Notifier interface {
	Notify(ctx context.Context, event task.VerificationEvent) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		Notifier: newStatusNotifier(deps.Redis, deps.Users, deps.EmailProvider, deps.Config),
	}
}
