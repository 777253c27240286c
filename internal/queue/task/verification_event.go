package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/souqly/backend/internal/domain"
)

const (
	VerificationEventTaskName  = "verificationEventTask"
	VerificationEventQueueName = "verificationEventQueue"
)

type EventType string

const (
	EventSubmitted EventType = "verification_submitted"
	EventApproved  EventType = "verification_approved"
	EventRejected  EventType = "verification_rejected"
	EventReset     EventType = "verification_reset"
)

// VerificationEvent is delivered at least once; consumers deduplicate by
// EventID.
type VerificationEvent struct {
	EventID    uuid.UUID              `json:"event_id"`
	Type       EventType              `json:"type"`
	UserID     uuid.UUID              `json:"user_id"`
	RequestID  uuid.UUID              `json:"request_id"`
	Status     domain.CanonicalStatus `json:"status"`
	Notes      string                 `json:"notes,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func NewVerificationEventTask(event VerificationEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("json event marshal failed: %w", err)
	}

	return asynq.NewTask(
		VerificationEventTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(VerificationEventQueueName),
	), nil
}
