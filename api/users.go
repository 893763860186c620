package api

import "github.com/gofrs/uuid"

// User is a registered account
//
// swagger:model
type User struct {
	// unique ID
	//
	// swagger:strfmt uuid4
	ID uuid.UUID `json:"id"`

	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// profile image URL
	Image string `json:"image"`

	// whether the onboarding profile has been completed
	Onboarded bool `json:"onboarded"`

	// onboarding profile, present only when Onboarded is true
	OnboardingInfo *OnboardingInfo `json:"onboardingInfo,omitempty"`
}

// Users is a slice of Users
//
// swagger:model
type Users []User

// UserCreateInput are the fields to register a new account
//
// swagger:model
type UserCreateInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserLoginInput are the credentials for authentication
//
// swagger:model
type UserLoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserOnboardingInput is the onboarding profile submitted after registration
//
// swagger:model
type UserOnboardingInput struct {
	IDNumber      string      `json:"userId"`
	PhoneNumber   string      `json:"phoneNumber"`
	VehicleNumber string      `json:"vehicleNumber"`
	LicenseNumber string      `json:"licenseNumber"`
	VehicleModel  string      `json:"vehicleModel"`
	Documents     DocumentSet `json:"documents"`
}

// UserUpdateInput are the editable profile fields. Empty values leave the
// corresponding field unchanged.
//
// swagger:model
type UserUpdateInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Image     string `json:"image"`
}

// UserEmailUpdateInput is the replacement email address for an account
//
// swagger:model
type UserEmailUpdateInput struct {
	Email string `json:"email"`
}

// AuthToken is issued on successful authentication
//
// swagger:model
type AuthToken struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   int64  `json:"expiresAt"`
	User        *User  `json:"user,omitempty"`
	Guest       *Guest `json:"guest,omitempty"`
}
