package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/souqly/backend/internal/db"
	"github.com/souqly/backend/internal/domain"
)

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `
	id, email, phone_number, account_type, location,
	phone_verified, phone_verified_at,
	business_name, business_description, business_license_no,
	verified, verified_at,
	created_at, updated_at, deleted_at
`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
    INSERT INTO user (id, email, phone_number, account_type, location)
    VALUES (uuid_to_bin(:id), :email, :phone_number, :account_type, :location)
    `

	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
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

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "repository.user.GetOneByID"

	query := `
    SELECT ` + userColumns + `
    FROM user
    WHERE id = uuid_to_bin(?) AND deleted_at IS NULL
    `

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user failed: %w", op, err)
	}

	return &user, nil
}

func (r *userRepository) UpdateVerificationProfile(ctx context.Context, userID uuid.UUID, location string, business *domain.BusinessProfile) error {
	const op = "repository.user.UpdateVerificationProfile"

	var (
		query string
		args  []interface{}
	)
	if business != nil {
		query = `
        UPDATE user
        SET location = ?, business_name = ?, business_description = ?, business_license_no = ?
        WHERE id = uuid_to_bin(?) AND deleted_at IS NULL
        `
		args = []interface{}{location, business.Name, business.Description, business.LicenseNo, userID}
	} else {
		query = `
        UPDATE user
        SET location = ?
        WHERE id = uuid_to_bin(?) AND deleted_at IS NULL
        `
		args = []interface{}{location, userID}
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: update user profile failed: %w", op, err)
	}

	return nil
}

func (r *userRepository) UpdatePhoneNumber(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	const op = "repository.user.UpdatePhoneNumber"

	// A changed number always drops the verified flag; the new number has to
	// be confirmed from scratch.
	const query = `
    UPDATE user
    SET phone_number = ?, phone_verified = 0, phone_verified_at = NULL
    WHERE id = uuid_to_bin(?) AND deleted_at IS NULL
    `

	res, err := r.db.ExecContext(ctx, query, phoneNumber, userID)
	if err != nil {
		return fmt.Errorf("%s: update phone number failed: %w", op, err)
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

func (r *userRepository) SetPhoneVerified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const op = "repository.user.SetPhoneVerified"

	const query = `
    UPDATE user
    SET phone_verified = 1, phone_verified_at = ?
    WHERE id = uuid_to_bin(?) AND deleted_at IS NULL
    `

	res, err := r.db.ExecContext(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("%s: update phone verified failed: %w", op, err)
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

func (r *userRepository) SetVerifiedWithTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, at time.Time) error {
	const op = "repository.user.SetVerifiedWithTx"

	const query = `
    UPDATE user
    SET verified = 1, verified_at = ?
    WHERE id = uuid_to_bin(?) AND deleted_at IS NULL
    `

	res, err := tx.ExecContext(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("%s: update user verified failed: %w", op, err)
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
