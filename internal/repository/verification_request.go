package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/souqly/backend/internal/db"
	"github.com/souqly/backend/internal/domain"
)

type verificationRequestRepository struct {
	db *sqlx.DB
}

func newVerificationRequestRepository(db *sqlx.DB) *verificationRequestRepository {
	return &verificationRequestRepository{
		db: db,
	}
}

const verificationRequestColumns = `
	id, user_id, status, active, submitted_at,
	documents_snapshot, business_snapshot, phone_verified_at_submission,
	reviewed_at, reviewed_by, review_notes,
	created_at, updated_at
`

// CreateWithTx inserts a new in-flight request. The (user_id, active) unique
// key rejects a second concurrent submission; that race surfaces as
// domain.ErrDuplicateEntry.
func (r *verificationRequestRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, request *domain.VerificationRequest) error {
	const op = "repository.verificationRequest.CreateWithTx"

	const query = `
    INSERT INTO verification_request
        (id, user_id, status, active, submitted_at, documents_snapshot, business_snapshot, phone_verified_at_submission)
    VALUES
        (uuid_to_bin(:id), uuid_to_bin(:user_id), :status, 1, :submitted_at, :documents_snapshot, :business_snapshot, :phone_verified_at_submission)
    `

	res, err := tx.NamedExecContext(ctx, query, request)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert verification request failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}
	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *verificationRequestRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.VerificationRequest, error) {
	const op = "repository.verificationRequest.GetOneByID"

	query := `
    SELECT ` + verificationRequestColumns + `
    FROM verification_request
    WHERE id = uuid_to_bin(?)
    `

	var request domain.VerificationRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verification request failed: %w", op, err)
	}

	return &request, nil
}

func (r *verificationRequestRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.VerificationRequest, error) {
	const op = "repository.verificationRequest.GetActiveByUserID"

	query := `
    SELECT ` + verificationRequestColumns + `
    FROM verification_request
    WHERE user_id = uuid_to_bin(?) AND active = 1
    `

	var request domain.VerificationRequest
	if err := r.db.GetContext(ctx, &request, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select active verification request failed: %w", op, err)
	}

	return &request, nil
}

func (r *verificationRequestRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.VerificationRequest, error) {
	const op = "repository.verificationRequest.GetLatestByUserID"

	query := `
    SELECT ` + verificationRequestColumns + `
    FROM verification_request
    WHERE user_id = uuid_to_bin(?)
    ORDER BY submitted_at DESC, created_at DESC
    LIMIT 1
    `

	var request domain.VerificationRequest
	if err := r.db.GetContext(ctx, &request, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select latest verification request failed: %w", op, err)
	}

	return &request, nil
}

func (r *verificationRequestRepository) List(ctx context.Context, status *domain.RequestStatus, page, limit int) ([]domain.VerificationRequest, int64, error) {
	const op = "repository.verificationRequest.List"

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	where := ""
	args := []interface{}{}
	if status != nil {
		where = "WHERE status = ?"
		args = append(args, *status)
	}

	countQuery := "SELECT COUNT(*) FROM verification_request " + where
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: count verification requests failed: %w", op, err)
	}

	listQuery := `
    SELECT ` + verificationRequestColumns + `
    FROM verification_request ` + where + `
    ORDER BY submitted_at ASC
    LIMIT ? OFFSET ?
    `
	args = append(args, limit, offset)

	var requests []domain.VerificationRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: select verification requests failed: %w", op, err)
	}

	return requests, total, nil
}

// FinalizeWithTx terminates a request, conditional on it still being under
// review. Zero affected rows means another reviewer got there first; that is
// reported as domain.ErrNoRowsAffected for the service to resolve.
func (r *verificationRequestRepository) FinalizeWithTx(ctx context.Context, tx *sqlx.Tx, finalize FinalizeRequest) error {
	const op = "repository.verificationRequest.FinalizeWithTx"

	const query = `
    UPDATE verification_request
    SET status = ?, active = NULL, reviewed_at = ?, reviewed_by = uuid_to_bin(?), review_notes = ?,
        documents_snapshot = COALESCE(?, documents_snapshot)
    WHERE id = uuid_to_bin(?) AND status = ?
    `

	var snapshotArg interface{}
	if finalize.DocumentsSnapshot != nil {
		snapshotArg = finalize.DocumentsSnapshot
	}

	res, err := tx.ExecContext(ctx, query,
		finalize.Status, finalize.ReviewedAt, finalize.ReviewedBy, finalize.ReviewNotes,
		snapshotArg, finalize.ID, domain.RequestStatusUnderReview,
	)
	if err != nil {
		return fmt.Errorf("%s: finalize verification request failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}
