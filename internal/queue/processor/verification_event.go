package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type verificationEventProcessor struct {
	workers *worker.Workers
}

func NewVerificationEventProcessor(workers *worker.Workers) *verificationEventProcessor {
	return &verificationEventProcessor{
		workers: workers,
	}
}

func (p *verificationEventProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var event task.VerificationEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("process verification event json unmarshal failed: %w", err)
	}

	if err := p.workers.Notifier.Notify(ctx, event); err != nil {
		return fmt.Errorf("notify verification event failed: %w", err)
	}

	return nil
}
