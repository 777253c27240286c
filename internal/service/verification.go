package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/souqly/backend/internal/cache"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/repository"
	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

type verificationService struct {
	users     repository.Users
	documents repository.UserDocuments
	requests  repository.VerificationRequests
	tx        repository.Transactor
	cache     cache.StatusCache
	events    EventPublisher
}

func newVerificationService(
	users repository.Users,
	documents repository.UserDocuments,
	requests repository.VerificationRequests,
	tx repository.Transactor,
	statusCache cache.StatusCache,
	events EventPublisher,
) *verificationService {
	return &verificationService{
		users:     users,
		documents: documents,
		requests:  requests,
		tx:        tx,
		cache:     statusCache,
		events:    events,
	}
}

// Submit creates a new verification request from the current profile state.
// The request row and the uploaded->under_review document transition land in
// one transaction, so a crash can never leave a request claiming documents
// that still read "uploaded".
func (s *verificationService) Submit(ctx context.Context, userID uuid.UUID) (*domain.VerificationRequest, error) {
	user, err := s.users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user failed: %w", err)
	}
	if user.Verified {
		return nil, ErrAlreadyVerified
	}

	documents, err := s.documents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load documents failed: %w", err)
	}

	eligibility := domain.EvaluateEligibility(user, documents)
	if !eligibility.Eligible {
		return nil, &IncompleteProfileError{Missing: eligibility.Missing}
	}

	if _, err := s.requests.GetActiveByUserID(ctx, userID); err == nil {
		return nil, ErrAlreadySubmitted
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check active request failed: %w", err)
	}

	requestID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate request id failed: %w", err)
	}

	request := &domain.VerificationRequest{
		ID:                        requestID,
		UserID:                    userID,
		Status:                    domain.RequestStatusUnderReview,
		SubmittedAt:               time.Now(),
		DocumentsSnapshot:         domain.SnapshotDocuments(documents),
		BusinessSnapshot:          (*domain.BusinessSnapshot)(domain.BusinessProfileOf(user)),
		PhoneVerifiedAtSubmission: user.PhoneVerified,
	}

	err = s.tx.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requests.CreateWithTx(ctx, tx, request); err != nil {
			return err
		}
		return s.documents.UpdateStatusByUserIDWithTx(ctx, tx, userID,
			domain.DocumentStatusUploaded, domain.DocumentStatusUnderReview)
	})
	if err != nil {
		// The unique (user_id, active) key turns a concurrent double submit
		// into a duplicate entry; the loser sees the same idempotent error
		// as a plain retry.
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("create verification request failed: %w", err)
	}

	s.invalidateStatus(ctx, userID)
	s.emit(ctx, task.EventSubmitted, userID, requestID, domain.StatusUnderReview, "")

	return request, nil
}

// ResetForResubmission clears the live documents back to "absent" after a
// rejection. The rejected request keeps its snapshot and notes for audit; the
// user stages fresh documents and submits again, creating a new request.
func (s *verificationService) ResetForResubmission(ctx context.Context, userID uuid.UUID) error {
	latest, err := s.requests.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrPrecondition
		}
		return fmt.Errorf("load latest request failed: %w", err)
	}
	if latest.Status != domain.RequestStatusRejected {
		return ErrPrecondition
	}

	if err := s.documents.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("clear documents failed: %w", err)
	}

	s.invalidateStatus(ctx, userID)
	s.emit(ctx, task.EventReset, userID, latest.ID, domain.StatusNotStarted, "")

	return nil
}

// StatusResult is the authoritative read model for the verification state.
type StatusResult struct {
	Status      domain.CanonicalStatus `json:"status"`
	Missing     []domain.MissingReason `json:"missing,omitempty"`
	ReviewNotes string                 `json:"review_notes,omitempty"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time             `json:"reviewed_at,omitempty"`
}

// Status resolves the canonical status. The redis cache in front is a
// disposable read replica, invalidated on every mutation; a cache failure
// falls through to the store.
func (s *verificationService) Status(ctx context.Context, userID uuid.UUID) (*StatusResult, error) {
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, userID); ok {
			var cached StatusResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	user, err := s.users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user failed: %w", err)
	}

	documents, err := s.documents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load documents failed: %w", err)
	}

	latest, err := s.requests.GetLatestByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load latest request failed: %w", err)
	}

	result := &StatusResult{
		Status: domain.ResolveStatus(user, documents, latest),
	}

	switch result.Status {
	case domain.StatusNotStarted, domain.StatusDocumentsPending:
		result.Missing = domain.EvaluateEligibility(user, documents).Missing
	case domain.StatusRejected:
		result.ReviewNotes = latest.ReviewNotes.String
		result.ReviewedAt = latest.ReviewedAt
	}
	if latest != nil && result.Status == domain.StatusUnderReview {
		result.SubmittedAt = &latest.SubmittedAt
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, userID, payload)
		}
	}

	return result, nil
}

type ProfileInput struct {
	Location string
	Business *domain.BusinessProfile
}

// UpdateProfile sets the location and, for business accounts, the business
// fields the completeness evaluator reads.
func (s *verificationService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) error {
	user, err := s.users.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user failed: %w", err)
	}

	if input.Business != nil && user.AccountType != domain.AccountTypeBusiness {
		return &ValidationError{Field: "business", Reason: "profile is not a business account"}
	}

	if err := s.users.UpdateVerificationProfile(ctx, userID, input.Location, input.Business); err != nil {
		return fmt.Errorf("update profile failed: %w", err)
	}

	s.invalidateStatus(ctx, userID)
	return nil
}

func (s *verificationService) invalidateStatus(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *verificationService) emit(ctx context.Context, eventType task.EventType, userID, requestID uuid.UUID, status domain.CanonicalStatus, notes string) {
	if s.events == nil {
		return
	}

	eventID, err := uuid.NewV7()
	if err != nil {
		logger.Error("generate event id failed", zap.Error(err))
		return
	}

	event := task.VerificationEvent{
		EventID:    eventID,
		Type:       eventType,
		UserID:     userID,
		RequestID:  requestID,
		Status:     status,
		Notes:      notes,
		OccurredAt: time.Now(),
	}
	if err := s.events.Enqueue(ctx, event); err != nil {
		logger.Error("enqueue verification event failed",
			zap.String("type", string(eventType)), zap.Error(err))
	}
}
