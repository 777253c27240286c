package domain

import "strings"

// CanonicalStatus is the single user-facing verification state. It is always
// derived (see ResolveStatus), never stored on the user row.
type CanonicalStatus string

const (
	StatusNotStarted       CanonicalStatus = "not_started"
	StatusDocumentsPending CanonicalStatus = "documents_pending"
	StatusUnderReview      CanonicalStatus = "under_review"
	StatusVerified         CanonicalStatus = "verified"
	StatusRejected         CanonicalStatus = "rejected"
)

func (s CanonicalStatus) String() string {
	return string(s)
}

// ParseStatus canonicalizes raw status tokens. Historical rows carry hyphen
// and case variants ("under-review", "Pending"), and "pending" was used in the
// admin panel as a synonym for awaiting review. Unknown tokens fall back to
// not_started so status rendering never hard-fails on a bad row.
func ParseStatus(raw string) CanonicalStatus {
	token := strings.ToLower(strings.TrimSpace(raw))
	token = strings.ReplaceAll(token, "-", "_")
	token = strings.ReplaceAll(token, " ", "_")

	switch token {
	case "not_started", "none", "new", "unverified", "":
		return StatusNotStarted
	case "documents_pending", "docs_pending", "incomplete", "awaiting_documents":
		return StatusDocumentsPending
	case "under_review", "in_review", "pending", "submitted", "processing", "pending_review":
		return StatusUnderReview
	case "verified", "approved", "accepted", "complete":
		return StatusVerified
	case "rejected", "declined", "denied", "failed":
		return StatusRejected
	default:
		return StatusNotStarted
	}
}

// ParseRequestStatus maps raw status tokens onto a stored request status,
// accepting the same legacy spellings as ParseStatus. Canonical states with
// no request-level counterpart report false.
func ParseRequestStatus(raw string) (RequestStatus, bool) {
	switch ParseStatus(raw) {
	case StatusUnderReview:
		return RequestStatusUnderReview, true
	case StatusVerified:
		return RequestStatusApproved, true
	case StatusRejected:
		return RequestStatusRejected, true
	default:
		return "", false
	}
}
