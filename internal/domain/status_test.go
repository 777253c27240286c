package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want CanonicalStatus
	}{
		{"not_started", StatusNotStarted},
		{"", StatusNotStarted},
		{"none", StatusNotStarted},
		{"unverified", StatusNotStarted},
		{"documents_pending", StatusDocumentsPending},
		{"docs_pending", StatusDocumentsPending},
		{"incomplete", StatusDocumentsPending},
		{"under_review", StatusUnderReview},
		{"under-review", StatusUnderReview},
		{"Under Review", StatusUnderReview},
		{"pending", StatusUnderReview},
		{"Pending", StatusUnderReview},
		{"submitted", StatusUnderReview},
		{"pending_review", StatusUnderReview},
		{"verified", StatusVerified},
		{"approved", StatusVerified},
		{"APPROVED", StatusVerified},
		{"rejected", StatusRejected},
		{"declined", StatusRejected},
		{"  rejected  ", StatusRejected},
		{"garbage", StatusNotStarted},
		{"123", StatusNotStarted},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseStatus(tc.raw))
		})
	}
}

func TestParseRequestStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want RequestStatus
		ok   bool
	}{
		{"under_review", RequestStatusUnderReview, true},
		{"under-review", RequestStatusUnderReview, true},
		{"pending", RequestStatusUnderReview, true},
		{"approved", RequestStatusApproved, true},
		{"verified", RequestStatusApproved, true},
		{"rejected", RequestStatusRejected, true},
		{"declined", RequestStatusRejected, true},
		{"not_started", "", false},
		{"documents_pending", "", false},
		{"garbage", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := ParseRequestStatus(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
