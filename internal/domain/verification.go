package domain

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

// A verification request is terminated exactly once: under_review moves to
// approved or rejected and never back.
const (
	RequestStatusUnderReview RequestStatus = "under_review"
	RequestStatusApproved    RequestStatus = "approved"
	RequestStatusRejected    RequestStatus = "rejected"
)

// VerificationRequest is one submission attempt. Rejected requests are kept
// forever for audit; resubmission creates a new row.
//
// Active mirrors the status for the unique (user_id, active) key: 1 while
// under review, NULL once terminal. MySQL unique indexes ignore NULLs, so the
// database itself guarantees at most one in-flight request per user.
type VerificationRequest struct {
	ID     uuid.UUID     `db:"id"`
	UserID uuid.UUID     `db:"user_id"`
	Status RequestStatus `db:"status"`
	Active *bool         `db:"active"`

	SubmittedAt               time.Time           `db:"submitted_at"`
	DocumentsSnapshot         DocumentSnapshotMap `db:"documents_snapshot"`
	BusinessSnapshot          *BusinessSnapshot   `db:"business_snapshot"`
	PhoneVerifiedAtSubmission bool                `db:"phone_verified_at_submission"`

	ReviewedAt  *time.Time     `db:"reviewed_at"`
	ReviewedBy  *uuid.UUID     `db:"reviewed_by"`
	ReviewNotes sql.NullString `db:"review_notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BusinessSnapshot is the immutable copy of the business profile at
// submission time, stored as a JSON column.
type BusinessSnapshot BusinessProfile

func (b *BusinessSnapshot) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

func (b *BusinessSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for BusinessSnapshot: %T", value)
	}

	return json.Unmarshal(bytes, b)
}
