package api

import "github.com/gofrs/uuid"

// Guest is an unregistered reporting party. A guest exists only to own cases
// filed without an account and carries no stored profile.
//
// swagger:model
type Guest struct {
	// unique ID
	//
	// swagger:strfmt uuid4
	ID uuid.UUID `json:"id"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Guests is a slice of Guests
//
// swagger:model
type Guests []Guest

// GuestCreateInput are the fields to start a guest flow
//
// swagger:model
type GuestCreateInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// GuestUpdateInput are the fields a guest may change on itself
//
// swagger:model
type GuestUpdateInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
