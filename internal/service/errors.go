package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/souqly/backend/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRequestNotFound  = errors.New("verification request not found")
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAlreadySubmitted means a request is already under review for the
	// user. Safe for callers to treat as "already done".
	ErrAlreadySubmitted = errors.New("verification request already under review")

	// ErrReviewConflict means the request was already finalized with a
	// different decision.
	ErrReviewConflict = errors.New("verification request already finalized")

	ErrAlreadyVerified = errors.New("user already verified")

	// ErrPrecondition covers state-dependent refusals, e.g. removing a
	// document while its request is under review.
	ErrPrecondition = errors.New("operation not permitted in the current state")

	ErrPhoneCodeInvalid     = errors.New("phone confirmation code invalid or expired")
	ErrPhoneAlreadyVerified = errors.New("phone number already verified")
)

// ValidationError reports user-correctable bad input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IncompleteProfileError carries the itemized missing set so the caller can
// render exact guidance.
type IncompleteProfileError struct {
	Missing []domain.MissingReason
}

func (e *IncompleteProfileError) Error() string {
	reasons := make([]string, len(e.Missing))
	for i, reason := range e.Missing {
		reasons[i] = string(reason)
	}
	return "profile incomplete: " + strings.Join(reasons, ", ")
}

// StorageError wraps a failed blob store operation. No partial state is left
// behind; the caller may retry with backoff.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("document storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
