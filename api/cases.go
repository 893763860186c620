package api

import (
	"time"

	"github.com/gofrs/uuid"
)

// CaseStatus
//
// may be one of: Pending, Filed
//
// swagger:model
type CaseStatus string

const (
	// created but not yet assigned to its owner
	CaseStatusPending = CaseStatus("Pending")

	// fully assembled and assigned
	CaseStatusFiled = CaseStatus("Filed")
)

// ThirdPartyInfo is the other driver's details as collected at the scene
//
// swagger:model
type ThirdPartyInfo struct {
	IDNumber      string      `json:"thirdPartyId"`
	PhoneNumber   string      `json:"phoneNumber"`
	VehicleNumber string      `json:"vehicleNumber"`
	LicenseNumber string      `json:"licenseNumber"`
	VehicleModel  string      `json:"vehicleModel"`
	Documents     DocumentSet `json:"documents"`
}

// Case is a complete accident report
//
// swagger:model
type Case struct {
	// unique ID
	//
	// swagger:strfmt uuid4
	ID uuid.UUID `json:"id"`

	// human-friendly unique reference, e.g. CD12345
	ReferenceNumber string `json:"referenceNumber"`

	Status CaseStatus `json:"status"`

	// owning user, mutually exclusive with GuestID
	//
	// swagger:strfmt uuid4
	UserID *uuid.UUID `json:"userId,omitempty"`

	// owning guest, mutually exclusive with UserID
	//
	// swagger:strfmt uuid4
	GuestID *uuid.UUID `json:"guestId,omitempty"`

	// reporting party's details frozen at filing time
	Reporter OnboardingInfo `json:"reporter"`

	ThirdParty ThirdPartyInfo `json:"thirdParty"`

	DamagePhotos DamagePhotoSet `json:"damagePhotos"`

	// assessed damage severity, one of: light, moderate, severe, unknown
	DamageSeverity string `json:"damageSeverity,omitempty"`

	// human-readable explanation of the assessed severity
	DamageNarrative string `json:"damageNarrative,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cases is a slice of Cases
//
// swagger:model
type Cases []Case

// CaseCreateInput are the fields to file a new case. Reporter details are
// required for guests and ignored for registered users, whose stored
// onboarding profile is used instead.
//
// swagger:model
type CaseCreateInput struct {
	Reporter     *OnboardingInfo `json:"reporter,omitempty"`
	ThirdParty   ThirdPartyInfo  `json:"thirdParty"`
	DamagePhotos DamagePhotoSet  `json:"damagePhotos"`

	DamageSeverity  string `json:"damageSeverity,omitempty"`
	DamageNarrative string `json:"damageNarrative,omitempty"`
}

// CaseOwnerUpdateInput assigns a pending case to its owner. Exactly one of
// UserID and GuestID must be given.
//
// swagger:model
type CaseOwnerUpdateInput struct {
	// swagger:strfmt uuid4
	UserID *uuid.UUID `json:"userId,omitempty"`

	// swagger:strfmt uuid4
	GuestID *uuid.UUID `json:"guestId,omitempty"`
}
