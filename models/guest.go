package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gobuffalo/events"
	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
)

// Guests is a slice of Guest objects
type Guests []Guest

// Guest is an unregistered reporting party. It exists only to own cases filed
// without an account, so it carries no credentials or stored profile.
type Guest struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"first_name" validate:"required"`
	LastName  string    `db:"last_name" validate:"required"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// String can be helpful for serializing the model
func (g Guest) String() string {
	jg, _ := json.Marshal(g)
	return string(jg)
}

// Validate gets run every time you call a "pop.Validate*" method.
func (g *Guest) Validate(tx *pop.Connection) (*validate.Errors, error) {
	return validateModel(g), nil
}

func (g *Guest) GetID() uuid.UUID {
	return g.ID
}

func (g *Guest) FindByID(tx *pop.Connection, id uuid.UUID) error {
	return find(tx, g, id)
}

// GetName combines the first and last names
func (g *Guest) GetName() string {
	return strings.TrimSpace(strings.TrimSpace(g.FirstName) + " " + strings.TrimSpace(g.LastName))
}

// Create stores the Guest data as a new record in the database.
func (g *Guest) Create(tx *pop.Connection) error {
	if err := create(tx, g); err != nil {
		return err
	}

	e := events.Event{
		Kind:    domain.EventApiGuestCreated,
		Message: fmt.Sprintf("Guest: %s", g.GetName()),
		Payload: events.Payload{domain.EventPayloadID: g.ID},
	}
	emitEvent(e)

	return nil
}

// Update writes the Guest data to an existing database record.
func (g *Guest) Update(tx *pop.Connection) error {
	return update(tx, g)
}

// CreateAccessToken creates a new token for the guest and stores its hash.
func (g *Guest) CreateAccessToken(tx *pop.Connection) (UserAccessToken, error) {
	uat := InitAccessToken()
	uat.GuestID = nulls.NewUUID(g.ID)
	if err := uat.Create(tx); err != nil {
		return UserAccessToken{}, api.NewAppError(err, api.ErrorCreatingAccessToken, api.CategoryInternal)
	}
	return uat, nil
}

// ConvertToAPI converts a models.Guest to an api.Guest
func (g *Guest) ConvertToAPI() api.Guest {
	return api.Guest{
		ID:        g.ID,
		FirstName: g.FirstName,
		LastName:  g.LastName,
	}
}
