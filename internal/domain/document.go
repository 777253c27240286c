package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	DocumentKindIDCard          DocumentKind = "id_card"
	DocumentKindBusinessLicense DocumentKind = "business_license"
)

// ParseDocumentKind validates a document kind coming from a route parameter.
func ParseDocumentKind(raw string) (DocumentKind, bool) {
	switch DocumentKind(raw) {
	case DocumentKindIDCard:
		return DocumentKindIDCard, true
	case DocumentKindBusinessLicense:
		return DocumentKindBusinessLicense, true
	}
	return "", false
}

type DocumentStatus string

// Document lifecycle. "absent" is represented by a missing row; a stored
// document only ever moves uploaded -> under_review -> verified | rejected.
const (
	DocumentStatusAbsent      DocumentStatus = "absent"
	DocumentStatusUploaded    DocumentStatus = "uploaded"
	DocumentStatusUnderReview DocumentStatus = "under_review"
	DocumentStatusVerified    DocumentStatus = "verified"
	DocumentStatusRejected    DocumentStatus = "rejected"
)

type UserDocument struct {
	ID         uuid.UUID      `db:"id"`
	UserID     uuid.UUID      `db:"user_id"`
	Kind       DocumentKind   `db:"kind"`
	Status     DocumentStatus `db:"status"`
	StorageKey string         `db:"storage_key"`
	Name       string         `db:"name"`
	SizeBytes  int64          `db:"size_bytes"`
	MimeType   string         `db:"mime_type"`
	UploadedAt time.Time      `db:"uploaded_at"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// DocumentSnapshot is the immutable copy of a document taken at submission
// time, so later edits to the live profile cannot alter what was reviewed.
type DocumentSnapshot struct {
	Status     DocumentStatus `json:"status"`
	StorageKey string         `json:"storage_key"`
	Name       string         `json:"name"`
	SizeBytes  int64          `json:"size_bytes"`
	MimeType   string         `json:"mime_type"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

type DocumentSnapshotMap map[DocumentKind]DocumentSnapshot

// Value implements driver.Valuer for the JSON snapshot column.
func (m DocumentSnapshotMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for the JSON snapshot column.
func (m *DocumentSnapshotMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for DocumentSnapshotMap: %T", value)
	}

	return json.Unmarshal(bytes, m)
}

// SnapshotDocuments copies the live documents into an immutable submission
// snapshot, marking every document as under review.
func SnapshotDocuments(docs []UserDocument) DocumentSnapshotMap {
	snapshot := make(DocumentSnapshotMap, len(docs))
	for _, doc := range docs {
		snapshot[doc.Kind] = DocumentSnapshot{
			Status:     DocumentStatusUnderReview,
			StorageKey: doc.StorageKey,
			Name:       doc.Name,
			SizeBytes:  doc.SizeBytes,
			MimeType:   doc.MimeType,
			UploadedAt: doc.UploadedAt,
		}
	}
	return snapshot
}
