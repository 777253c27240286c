package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeIndividual AccountType = "individual"
	AccountTypeBusiness   AccountType = "business"
)

type User struct {
	ID          uuid.UUID      `db:"id"`
	Email       sql.NullString `db:"email"`
	PhoneNumber sql.NullString `db:"phone_number"`
	AccountType AccountType    `db:"account_type"`
	Location    sql.NullString `db:"location"`

	PhoneVerified   bool       `db:"phone_verified"`
	PhoneVerifiedAt *time.Time `db:"phone_verified_at"`

	BusinessName        sql.NullString `db:"business_name"`
	BusinessDescription sql.NullString `db:"business_description"`
	BusinessLicenseNo   sql.NullString `db:"business_license_no"`

	Verified   bool       `db:"verified"`
	VerifiedAt *time.Time `db:"verified_at"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// BusinessProfile groups the business fields the completeness evaluator
// checks. Location lives on the user row and is shared with individual
// accounts.
type BusinessProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LicenseNo   string `json:"license_number"`
	Location    string `json:"location"`
}

// BusinessProfileOf assembles the business snapshot fields from the user row.
// Nil for individual accounts.
func BusinessProfileOf(u *User) *BusinessProfile {
	if u == nil || u.AccountType != AccountTypeBusiness {
		return nil
	}
	return &BusinessProfile{
		Name:        u.BusinessName.String,
		Description: u.BusinessDescription.String,
		LicenseNo:   u.BusinessLicenseNo.String,
		Location:    u.Location.String,
	}
}
