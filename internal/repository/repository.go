package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/souqly/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	db *sqlx.DB

	Users                Users
	UserDocuments        UserDocuments
	VerificationRequests VerificationRequests
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		db:                   db,
		Users:                newUserRepository(db),
		UserDocuments:        newUserDocumentRepository(db),
		VerificationRequests: newVerificationRequestRepository(db),
	}
}

// Transactor runs a function inside one database transaction. Multi-row
// mutations (submit, approve, reject) go through this so a crash can never
// leave a request claiming documents that still read "uploaded".
type Transactor interface {
	InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

func (r *Repositories) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx failed: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx failed: %w", err)
	}
	return nil
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateVerificationProfile(ctx context.Context, userID uuid.UUID, location string, business *domain.BusinessProfile) error
	UpdatePhoneNumber(ctx context.Context, userID uuid.UUID, phoneNumber string) error
	SetPhoneVerified(ctx context.Context, userID uuid.UUID, at time.Time) error
	SetVerifiedWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, at time.Time) error
}

type UserDocuments interface {
	Upsert(ctx context.Context, document *domain.UserDocument) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.UserDocument, error)
	GetOneByUserAndKind(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind) (*domain.UserDocument, error)
	DeleteByUserAndKind(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	UpdateStatusByUserIDWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, from, to domain.DocumentStatus) error
}

type VerificationRequests interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, request *domain.VerificationRequest) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.VerificationRequest, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.VerificationRequest, error)
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.VerificationRequest, error)
	List(ctx context.Context, status *domain.RequestStatus, page, limit int) ([]domain.VerificationRequest, int64, error)
	FinalizeWithTx(ctx context.Context, tx *sqlx.Tx, finalize FinalizeRequest) error
}

// FinalizeRequest is the conditional terminal update for a request. The
// update is keyed on the current under_review status (compare-and-swap);
// a concurrent decision loses with domain.ErrNoRowsAffected.
type FinalizeRequest struct {
	ID                uuid.UUID
	Status            domain.RequestStatus
	ReviewedAt        time.Time
	ReviewedBy        uuid.UUID
	ReviewNotes       string
	DocumentsSnapshot domain.DocumentSnapshotMap
}
