package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWith(status RequestStatus) *VerificationRequest {
	return &VerificationRequest{Status: status}
}

func TestResolveStatus_NilUser(t *testing.T) {
	assert.Equal(t, StatusNotStarted, ResolveStatus(nil, nil, nil))
}

func TestResolveStatus_VerifiedWinsOverEverything(t *testing.T) {
	u := individualUser()
	u.Verified = true

	got := ResolveStatus(u, []UserDocument{
		docOf(DocumentKindIDCard, DocumentStatusRejected),
	}, requestWith(RequestStatusRejected))

	assert.Equal(t, StatusVerified, got)
}

func TestResolveStatus_UnderReview(t *testing.T) {
	got := ResolveStatus(individualUser(), []UserDocument{
		docOf(DocumentKindIDCard, DocumentStatusUnderReview),
	}, requestWith(RequestStatusUnderReview))

	assert.Equal(t, StatusUnderReview, got)
}

func TestResolveStatus_RejectedWhileDocumentsRemain(t *testing.T) {
	got := ResolveStatus(individualUser(), []UserDocument{
		docOf(DocumentKindIDCard, DocumentStatusRejected),
	}, requestWith(RequestStatusRejected))

	assert.Equal(t, StatusRejected, got)
}

func TestResolveStatus_RejectionClearsAfterReset(t *testing.T) {
	// resetForResubmission deletes the live documents; the old rejected
	// request stays in history but no longer drives the user-facing state.
	got := ResolveStatus(individualUser(), nil, requestWith(RequestStatusRejected))

	assert.Equal(t, StatusNotStarted, got)
}

func TestResolveStatus_EligibleProfileIsDocumentsPending(t *testing.T) {
	got := ResolveStatus(individualUser(), []UserDocument{
		docOf(DocumentKindIDCard, DocumentStatusUploaded),
	}, nil)

	assert.Equal(t, StatusDocumentsPending, got)
}

func TestResolveStatus_IncompleteProfileIsNotStarted(t *testing.T) {
	u := individualUser()
	u.PhoneVerified = false

	got := ResolveStatus(u, nil, nil)

	assert.Equal(t, StatusNotStarted, got)
}

func TestResolveStatus_ApprovedRequestWithoutUserFlagFallsThrough(t *testing.T) {
	// The user row is the source of truth for "verified": an approved request
	// whose user update has not landed yet renders the eligibility-derived
	// state rather than claiming verified early.
	got := ResolveStatus(individualUser(), []UserDocument{
		docOf(DocumentKindIDCard, DocumentStatusVerified),
	}, requestWith(RequestStatusApproved))

	assert.Equal(t, StatusDocumentsPending, got)
}
