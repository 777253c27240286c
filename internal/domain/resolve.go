package domain

// ResolveStatus computes the authoritative verification status from the
// profile, the live documents and the latest request. Pure and total: every
// combination of inputs maps to a status, because every UI surface depends
// on this rendering something.
//
// Precedence, highest first: a verified profile wins; then an in-flight
// request; then an unreset rejection; then documents_pending once the
// profile is fully eligible; otherwise not_started.
func ResolveStatus(u *User, docs []UserDocument, latest *VerificationRequest) CanonicalStatus {
	if u == nil {
		return StatusNotStarted
	}
	if u.Verified {
		return StatusVerified
	}

	if latest != nil {
		switch latest.Status {
		case RequestStatusUnderReview:
			return StatusUnderReview
		case RequestStatusRejected:
			// resetForResubmission clears the rejected live documents; while
			// any remain the rejection is still the user-facing state.
			if hasRejectedDocument(docs) {
				return StatusRejected
			}
		}
	}

	if elig := EvaluateEligibility(u, docs); elig.Eligible {
		return StatusDocumentsPending
	}

	return StatusNotStarted
}

func hasRejectedDocument(docs []UserDocument) bool {
	for _, doc := range docs {
		if doc.Status == DocumentStatusRejected {
			return true
		}
	}
	return false
}
