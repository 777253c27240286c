package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/souqly/backend/internal/cache"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/repository"
	"github.com/souqly/backend/internal/storage"
	"github.com/souqly/backend/pkg/logger"
	"go.uber.org/zap"
)

// DefaultRejectionNotes is used when a reviewer rejects without a message;
// missing notes never block a rejection.
const DefaultRejectionNotes = "Your verification could not be approved. Please review your documents and submit again."

type reviewService struct {
	users     repository.Users
	documents repository.UserDocuments
	requests  repository.VerificationRequests
	tx        repository.Transactor
	blobs     storage.Store
	cache     cache.StatusCache
	events    EventPublisher
}

func newReviewService(
	users repository.Users,
	documents repository.UserDocuments,
	requests repository.VerificationRequests,
	tx repository.Transactor,
	blobs storage.Store,
	statusCache cache.StatusCache,
	events EventPublisher,
) *reviewService {
	return &reviewService{
		users:     users,
		documents: documents,
		requests:  requests,
		tx:        tx,
		blobs:     blobs,
		cache:     statusCache,
		events:    events,
	}
}

// Approve finalizes a request positively: the request and its snapshot move
// to verified, the live documents follow, and the profile flips to verified.
// A repeated approve of an already-approved request is a no-op success so
// retried admin calls converge.
func (s *reviewService) Approve(ctx context.Context, requestID, reviewerID uuid.UUID, notes string) error {
	request, err := s.requests.GetOneByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load request failed: %w", err)
	}

	switch request.Status {
	case domain.RequestStatusApproved:
		return nil
	case domain.RequestStatusRejected:
		return ErrReviewConflict
	}

	reviewedAt := time.Now()
	verifiedSnapshot := make(domain.DocumentSnapshotMap, len(request.DocumentsSnapshot))
	for kind, snapshot := range request.DocumentsSnapshot {
		snapshot.Status = domain.DocumentStatusVerified
		verifiedSnapshot[kind] = snapshot
	}

	err = s.tx.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requests.FinalizeWithTx(ctx, tx, repository.FinalizeRequest{
			ID:                requestID,
			Status:            domain.RequestStatusApproved,
			ReviewedAt:        reviewedAt,
			ReviewedBy:        reviewerID,
			ReviewNotes:       notes,
			DocumentsSnapshot: verifiedSnapshot,
		}); err != nil {
			return err
		}
		if err := s.documents.UpdateStatusByUserIDWithTx(ctx, tx, request.UserID,
			domain.DocumentStatusUnderReview, domain.DocumentStatusVerified); err != nil {
			return err
		}
		return s.users.SetVerifiedWithTx(ctx, tx, request.UserID, reviewedAt)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return s.resolveFinalizeRace(ctx, requestID, domain.RequestStatusApproved)
		}
		return fmt.Errorf("approve request failed: %w", err)
	}

	s.invalidateStatus(ctx, request.UserID)
	s.emit(ctx, task.EventApproved, request.UserID, requestID, domain.StatusVerified, notes)

	return nil
}

// Reject finalizes a request negatively. The live document statuses move to
// rejected, while the request snapshot stays exactly as reviewed.
func (s *reviewService) Reject(ctx context.Context, requestID, reviewerID uuid.UUID, notes string) error {
	request, err := s.requests.GetOneByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("load request failed: %w", err)
	}

	switch request.Status {
	case domain.RequestStatusRejected:
		return nil
	case domain.RequestStatusApproved:
		return ErrReviewConflict
	}

	if notes == "" {
		notes = DefaultRejectionNotes
	}

	err = s.tx.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.requests.FinalizeWithTx(ctx, tx, repository.FinalizeRequest{
			ID:          requestID,
			Status:      domain.RequestStatusRejected,
			ReviewedAt:  time.Now(),
			ReviewedBy:  reviewerID,
			ReviewNotes: notes,
		}); err != nil {
			return err
		}
		return s.documents.UpdateStatusByUserIDWithTx(ctx, tx, request.UserID,
			domain.DocumentStatusUnderReview, domain.DocumentStatusRejected)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return s.resolveFinalizeRace(ctx, requestID, domain.RequestStatusRejected)
		}
		return fmt.Errorf("reject request failed: %w", err)
	}

	s.invalidateStatus(ctx, request.UserID)
	s.emit(ctx, task.EventRejected, request.UserID, requestID, domain.StatusRejected, notes)

	return nil
}

// resolveFinalizeRace handles the losing side of two concurrent decisions.
// Converging on the same decision is a harmless no-op; a different decision
// is a conflict.
func (s *reviewService) resolveFinalizeRace(ctx context.Context, requestID uuid.UUID, wanted domain.RequestStatus) error {
	request, err := s.requests.GetOneByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("reload request after race failed: %w", err)
	}
	if request.Status == wanted {
		return nil
	}
	return ErrReviewConflict
}

func (s *reviewService) List(ctx context.Context, status *domain.RequestStatus, page, limit int) ([]domain.VerificationRequest, int64, error) {
	return s.requests.List(ctx, status, page, limit)
}

func (s *reviewService) GetOneByID(ctx context.Context, requestID uuid.UUID) (*domain.VerificationRequest, error) {
	request, err := s.requests.GetOneByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load request failed: %w", err)
	}
	return request, nil
}

// DocumentContent fetches the reviewed bytes of a snapshotted document.
func (s *reviewService) DocumentContent(ctx context.Context, requestID uuid.UUID, kind domain.DocumentKind) ([]byte, string, error) {
	request, err := s.GetOneByID(ctx, requestID)
	if err != nil {
		return nil, "", err
	}

	snapshot, ok := request.DocumentsSnapshot[kind]
	if !ok {
		return nil, "", ErrDocumentNotFound
	}

	data, mimeType, err := s.blobs.Get(ctx, snapshot.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", &StorageError{Op: "get", Err: err}
	}

	return data, mimeType, nil
}

func (s *reviewService) invalidateStatus(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *reviewService) emit(ctx context.Context, eventType task.EventType, userID, requestID uuid.UUID, status domain.CanonicalStatus, notes string) {
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
