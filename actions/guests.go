package actions

import (
	"errors"

	"github.com/gobuffalo/buffalo"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/models"
)

// swagger:operation POST /guests Guests GuestsCreate
//
// GuestsCreate
//
// start a guest flow; returns the new guest and an auth token for it
//
// ---
// parameters:
//   - name: guest input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/GuestCreateInput"
// responses:
//   '200':
//     description: an auth token for the new guest
//     schema:
//       "$ref": "#/definitions/AuthToken"
func guestsCreate(c buffalo.Context) error {
	var input api.GuestCreateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	tx := models.Tx(c)

	guest := models.Guest{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := guest.Create(tx); err != nil {
		return reportError(c, err)
	}

	uat, err := guest.CreateAccessToken(tx)
	if err != nil {
		return reportError(c, err)
	}

	apiGuest := guest.ConvertToAPI()
	return renderOk(c, api.AuthToken{
		AccessToken: uat.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   uat.ExpiresAt.Unix(),
		Guest:       &apiGuest,
	})
}

// swagger:operation GET /guests/{id} Guests GuestsView
//
// GuestsView
//
// a guest's details; only the guest itself may view them
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: guest ID
// responses:
//   '200':
//     description: a guest
//     schema:
//       "$ref": "#/definitions/Guest"
func guestsView(c buffalo.Context) error {
	guest, err := currentGuestForParam(c)
	if err != nil {
		return reportError(c, err)
	}

	return renderOk(c, guest.ConvertToAPI())
}

// swagger:operation PUT /guests/{id} Guests GuestsUpdate
//
// GuestsUpdate
//
// update a guest's name; only the guest itself may do so
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: guest ID
//   - name: guest input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/GuestUpdateInput"
// responses:
//   '200':
//     description: the updated guest
//     schema:
//       "$ref": "#/definitions/Guest"
func guestsUpdate(c buffalo.Context) error {
	guest, err := currentGuestForParam(c)
	if err != nil {
		return reportError(c, err)
	}

	var input api.GuestUpdateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	guest.FirstName = input.FirstName
	guest.LastName = input.LastName
	if err := guest.Update(models.Tx(c)); err != nil {
		return reportError(c, err)
	}

	return renderOk(c, guest.ConvertToAPI())
}

// currentGuestForParam resolves the route's guest ID and requires it to match
// the authenticated guest.
func currentGuestForParam(c buffalo.Context) (models.Guest, error) {
	guest := models.CurrentGuest(c)
	if guest.ID.IsNil() {
		err := errors.New("only guests have guest details")
		return models.Guest{}, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden)
	}

	id, err := uuid.FromString(c.Param(domain.TypeGuest + "_id"))
	if err != nil {
		return models.Guest{}, api.NewAppError(err, api.ErrorMustBeAValidUUID, api.CategoryUser)
	}

	if id != guest.ID {
		err := errors.New("guest details do not belong to the authenticated guest")
		return models.Guest{}, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden)
	}

	return guest, nil
}
