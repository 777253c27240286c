package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/souqly/backend/internal/domain"
)

type userDocumentRepository struct {
	db *sqlx.DB
}

func newUserDocumentRepository(db *sqlx.DB) *userDocumentRepository {
	return &userDocumentRepository{
		db: db,
	}
}

const userDocumentColumns = `
	id, user_id, kind, status, storage_key, name, size_bytes, mime_type,
	uploaded_at, created_at, updated_at
`

// Upsert replaces the document of the same kind; a user may re-stage a
// document any number of times before submitting.
func (r *userDocumentRepository) Upsert(ctx context.Context, document *domain.UserDocument) error {
	const op = "repository.userDocument.Upsert"

	const query = `
    INSERT INTO user_document (id, user_id, kind, status, storage_key, name, size_bytes, mime_type, uploaded_at)
    VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :kind, :status, :storage_key, :name, :size_bytes, :mime_type, :uploaded_at)
    ON DUPLICATE KEY UPDATE
        status = VALUES(status),
        storage_key = VALUES(storage_key),
        name = VALUES(name),
        size_bytes = VALUES(size_bytes),
        mime_type = VALUES(mime_type),
        uploaded_at = VALUES(uploaded_at)
    `

	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("%s: upsert user document failed: %w", op, err)
	}

	return nil
}

func (r *userDocumentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.UserDocument, error) {
	const op = "repository.userDocument.GetByUserID"

	query := `
    SELECT ` + userDocumentColumns + `
    FROM user_document
    WHERE user_id = uuid_to_bin(?)
    `

	var documents []domain.UserDocument
	if err := r.db.SelectContext(ctx, &documents, query, userID); err != nil {
		return nil, fmt.Errorf("%s: select user documents failed: %w", op, err)
	}

	return documents, nil
}

func (r *userDocumentRepository) GetOneByUserAndKind(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind) (*domain.UserDocument, error) {
	const op = "repository.userDocument.GetOneByUserAndKind"

	query := `
    SELECT ` + userDocumentColumns + `
    FROM user_document
    WHERE user_id = uuid_to_bin(?) AND kind = ?
    `

	var document domain.UserDocument
	if err := r.db.GetContext(ctx, &document, query, userID, kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user document failed: %w", op, err)
	}

	return &document, nil
}

func (r *userDocumentRepository) DeleteByUserAndKind(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind) error {
	const op = "repository.userDocument.DeleteByUserAndKind"

	const query = `
    DELETE FROM user_document
    WHERE user_id = uuid_to_bin(?) AND kind = ?
    `

	res, err := r.db.ExecContext(ctx, query, userID, kind)
	if err != nil {
		return fmt.Errorf("%s: delete user document failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteByUserID clears every live document, returning them to "absent".
// Used by resubmission reset; the rejected request keeps its snapshot.
func (r *userDocumentRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.userDocument.DeleteByUserID"

	const query = `
    DELETE FROM user_document
    WHERE user_id = uuid_to_bin(?)
    `

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: delete user documents failed: %w", op, err)
	}

	return nil
}

func (r *userDocumentRepository) UpdateStatusByUserIDWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, from, to domain.DocumentStatus) error {
	const op = "repository.userDocument.UpdateStatusByUserIDWithTx"

	const query = `
    UPDATE user_document
    SET status = ?
    WHERE user_id = uuid_to_bin(?) AND status = ?
    `

	if _, err := tx.ExecContext(ctx, query, to, userID, from); err != nil {
		return fmt.Errorf("%s: update document status failed: %w", op, err)
	}

	return nil
}
