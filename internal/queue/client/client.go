package client

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/souqly/backend/internal/queue/task"
)

// Publisher enqueues verification events for asynchronous delivery. Enqueue
// is fire-and-retry: asynq persists the task in redis and redelivers on
// worker failure, which is where the at-least-once guarantee comes from.
type Publisher struct {
	client *asynq.Client
}

func NewPublisher(client *asynq.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Enqueue(ctx context.Context, event task.VerificationEvent) error {
	t, err := task.NewVerificationEventTask(event)
	if err != nil {
		return fmt.Errorf("build verification event task failed: %w", err)
	}

	if _, err := p.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue verification event failed: %w", err)
	}

	return nil
}
