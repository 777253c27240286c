package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/repository"
	"github.com/souqly/backend/internal/storage"
)

// MaxDocumentSizeBytes caps a single staged document at 10 MiB.
const MaxDocumentSizeBytes = 10 << 20

type documentService struct {
	documents repository.UserDocuments
	requests  repository.VerificationRequests
	blobs     storage.Store
}

func newDocumentService(
	documents repository.UserDocuments,
	requests repository.VerificationRequests,
	blobs storage.Store,
) *documentService {
	return &documentService{
		documents: documents,
		requests:  requests,
		blobs:     blobs,
	}
}

type StageDocumentInput struct {
	Kind     domain.DocumentKind
	Name     string
	MimeType string
	Data     []byte
}

func allowedMimeType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

// Stage validates and stores an uploaded document against the user. Staging
// is independent of submission: the record stays "uploaded" and no request
// state moves. The blob write happens before the profile mutation, so a
// storage failure leaves no partial state behind.
func (s *documentService) Stage(ctx context.Context, userID uuid.UUID, input StageDocumentInput) (*domain.UserDocument, error) {
	if len(input.Data) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "file is empty"}
	}
	if int64(len(input.Data)) > MaxDocumentSizeBytes {
		return nil, &ValidationError{Field: "file", Reason: "file exceeds the 10 MiB limit"}
	}
	if !allowedMimeType(input.MimeType) {
		return nil, &ValidationError{Field: "file", Reason: "only images and PDF documents are accepted"}
	}

	// While a request is in flight the submitted set is frozen; re-staging
	// has to wait for the decision (or a resubmission reset).
	if _, err := s.requests.GetActiveByUserID(ctx, userID); err == nil {
		return nil, ErrPrecondition
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check active request failed: %w", err)
	}

	// A rejected document comes back only through the resubmission reset,
	// and a verified one never leaves that state.
	existing, err := s.documents.GetOneByUserAndKind(ctx, userID, input.Kind)
	switch {
	case err == nil:
		if existing.Status == domain.DocumentStatusRejected || existing.Status == domain.DocumentStatusVerified {
			return nil, ErrPrecondition
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load existing document failed: %w", err)
	}

	documentID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate document id failed: %w", err)
	}

	storageKey := fmt.Sprintf("documents/%s/%s/%s", userID, input.Kind, documentID)
	if err := s.blobs.Put(ctx, storageKey, input.Data, input.MimeType); err != nil {
		return nil, &StorageError{Op: "put", Err: err}
	}

	document := &domain.UserDocument{
		ID:         documentID,
		UserID:     userID,
		Kind:       input.Kind,
		Status:     domain.DocumentStatusUploaded,
		StorageKey: storageKey,
		Name:       input.Name,
		SizeBytes:  int64(len(input.Data)),
		MimeType:   input.MimeType,
		UploadedAt: time.Now(),
	}

	if err := s.documents.Upsert(ctx, document); err != nil {
		return nil, fmt.Errorf("store document record failed: %w", err)
	}

	return document, nil
}

// Remove deletes a staged document. Permitted only while the document is
// still "uploaded" and no request is under review for the user.
func (s *documentService) Remove(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind) error {
	document, err := s.documents.GetOneByUserAndKind(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("load document failed: %w", err)
	}

	if document.Status != domain.DocumentStatusUploaded {
		return ErrPrecondition
	}

	if _, err := s.requests.GetActiveByUserID(ctx, userID); err == nil {
		return ErrPrecondition
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check active request failed: %w", err)
	}

	if err := s.documents.DeleteByUserAndKind(ctx, userID, kind); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("delete document failed: %w", err)
	}

	return nil
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID) ([]domain.UserDocument, error) {
	return s.documents.GetByUserID(ctx, userID)
}
