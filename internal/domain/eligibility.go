package domain

// MissingReason itemizes why a profile cannot be submitted for verification
// yet. Multiple reasons may apply at once; the API returns the full set so
// the client can render exact guidance.
type MissingReason string

const (
	MissingPhoneNotVerified       MissingReason = "phone_not_verified"
	MissingIDCard                 MissingReason = "id_card_missing"
	MissingLocation               MissingReason = "location_missing"
	MissingBusinessInfoIncomplete MissingReason = "business_info_incomplete"
	MissingBusinessLicense        MissingReason = "business_license_missing"
)

type Eligibility struct {
	Eligible bool
	Missing  []MissingReason
}

func documentPresent(docs []UserDocument, kind DocumentKind) bool {
	for _, doc := range docs {
		if doc.Kind != kind {
			continue
		}
		switch doc.Status {
		case DocumentStatusUploaded, DocumentStatusUnderReview, DocumentStatusVerified:
			return true
		}
	}
	return false
}

// EvaluateEligibility derives whether the user currently satisfies every
// precondition for requesting verification. Pure and side-effect free; this
// is the single source of truth for "can this user submit", used both to
// gate submission and to render guidance.
func EvaluateEligibility(u *User, docs []UserDocument) Eligibility {
	var missing []MissingReason

	if !u.PhoneVerified {
		missing = append(missing, MissingPhoneNotVerified)
	}
	if !documentPresent(docs, DocumentKindIDCard) {
		missing = append(missing, MissingIDCard)
	}
	if u.Location.String == "" {
		missing = append(missing, MissingLocation)
	}

	if u.AccountType == AccountTypeBusiness {
		if u.BusinessName.String == "" || u.BusinessDescription.String == "" ||
			u.BusinessLicenseNo.String == "" || u.Location.String == "" {
			missing = append(missing, MissingBusinessInfoIncomplete)
		}
		if !documentPresent(docs, DocumentKindBusinessLicense) {
			missing = append(missing, MissingBusinessLicense)
		}
	}

	return Eligibility{Eligible: len(missing) == 0, Missing: missing}
}
