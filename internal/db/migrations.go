package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the schema. Statements are idempotent so startup can run
// them unconditionally.
//
// The UNIQUE KEY on verification_request (user_id, active) is what enforces
// the one-in-flight-request-per-user invariant: active is 1 while the request
// is under review and NULL once terminal, and MySQL unique indexes ignore
// NULL rows.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user (
			id BINARY(16) NOT NULL PRIMARY KEY,
			email VARCHAR(255) NULL,
			phone_number VARCHAR(32) NULL,
			account_type VARCHAR(16) NOT NULL DEFAULT 'individual',
			location VARCHAR(255) NULL,
			phone_verified TINYINT(1) NOT NULL DEFAULT 0,
			phone_verified_at TIMESTAMP NULL,
			business_name VARCHAR(255) NULL,
			business_description TEXT NULL,
			business_license_no VARCHAR(128) NULL,
			verified TINYINT(1) NOT NULL DEFAULT 0,
			verified_at TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_document (
			id BINARY(16) NOT NULL PRIMARY KEY,
			user_id BINARY(16) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			status VARCHAR(16) NOT NULL,
			storage_key VARCHAR(512) NOT NULL,
			name VARCHAR(255) NOT NULL,
			size_bytes BIGINT NOT NULL,
			mime_type VARCHAR(128) NOT NULL,
			uploaded_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_user_document_kind (user_id, kind),
			KEY idx_user_document_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS verification_request (
			id BINARY(16) NOT NULL PRIMARY KEY,
			user_id BINARY(16) NOT NULL,
			status VARCHAR(16) NOT NULL,
			active TINYINT(1) NULL,
			submitted_at TIMESTAMP NOT NULL,
			documents_snapshot JSON NOT NULL,
			business_snapshot JSON NULL,
			phone_verified_at_submission TINYINT(1) NOT NULL DEFAULT 0,
			reviewed_at TIMESTAMP NULL,
			reviewed_by BINARY(16) NULL,
			review_notes TEXT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_verification_request_active (user_id, active),
			KEY idx_verification_request_user (user_id, submitted_at),
			KEY idx_verification_request_status (status, submitted_at)
		)`,
		`CREATE TABLE IF NOT EXISTS document_blob (
			blob_key VARCHAR(512) NOT NULL PRIMARY KEY,
			data LONGBLOB NOT NULL,
			mime_type VARCHAR(128) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply migration failed: %w", err)
		}
	}

	return nil
}
