package actions

import (
	"errors"
	"strings"
	"time"

	"github.com/gobuffalo/buffalo"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/cache"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/models"
)

// swagger:operation POST /users Users UsersCreate
//
// UsersCreate
//
// register a new account
//
// ---
// parameters:
//   - name: user input
//     in: body
//     description: user create input object
//     required: true
//     schema:
//       "$ref": "#/definitions/UserCreateInput"
// responses:
//   '200':
//     description: an auth token for the new user
//     schema:
//       "$ref": "#/definitions/AuthToken"
func usersCreate(c buffalo.Context) error {
	var input api.UserCreateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	if input.Password == "" {
		err := errors.New("password is required")
		return reportError(c, api.NewAppError(err, api.ErrorValidation, api.CategoryUser))
	}

	tx := models.Tx(c)

	user := models.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		LastLoginUTC: time.Now().UTC(),
	}
	if err := user.SetPassword(input.Password); err != nil {
		return reportError(c, err)
	}
	if err := user.Create(tx); err != nil {
		return reportError(c, err)
	}

	return renderAuthToken(c, user)
}

// swagger:operation POST /users/login Users UsersLogin
//
// UsersLogin
//
// authenticate with email and password
//
// ---
// parameters:
//   - name: login input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/UserLoginInput"
// responses:
//   '200':
//     description: an auth token
//     schema:
//       "$ref": "#/definitions/AuthToken"
func usersLogin(c buffalo.Context) error {
	var input api.UserLoginInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	tx := models.Tx(c)

	var user models.User
	if err := user.FindByEmail(tx, input.Email); err != nil {
		appErr := api.NewAppError(errors.New("invalid email or password"),
			api.ErrorInvalidCredentials, api.CategoryUnauthorized)
		return reportError(c, appErr)
	}

	if !user.VerifyPassword(input.Password) {
		appErr := api.NewAppError(errors.New("invalid email or password"),
			api.ErrorInvalidCredentials, api.CategoryUnauthorized)
		return reportError(c, appErr)
	}

	if user.IsBlocked {
		appErr := api.NewAppError(errors.New("login attempt by blocked user "+user.ID.String()),
			api.ErrorUserBlocked, api.CategoryForbidden)
		return reportError(c, appErr)
	}

	user.LastLoginUTC = time.Now().UTC()
	if err := user.Update(tx); err != nil {
		return reportError(c, err)
	}

	return renderAuthToken(c, user)
}

// swagger:operation GET /users/me Users UsersMe
//
// UsersMe
//
// the authenticated user's profile, including onboarding state
//
// ---
// responses:
//   '200':
//     description: the current user
//     schema:
//       "$ref": "#/definitions/User"
func usersMe(c buffalo.Context) error {
	user := models.CurrentUser(c)
	if user.ID.IsNil() {
		err := errors.New("only registered users have a profile")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	return renderOk(c, user.ConvertToAPI(c, true))
}

// swagger:operation GET /users/{id} Users UsersView
//
// UsersView
//
// a user's profile by ID; only the user itself may view it
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: user ID
// responses:
//   '200':
//     description: a user
//     schema:
//       "$ref": "#/definitions/User"
func usersView(c buffalo.Context) error {
	user := models.CurrentUser(c)
	if user.ID.IsNil() {
		err := errors.New("only registered users have a profile")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	id, err := userID(c)
	if err != nil {
		return reportError(c, err)
	}

	if id != user.ID {
		err := errors.New("profile does not belong to the authenticated user")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	var out api.User
	err = cache.Fetch(c, cache.UserKey(user.ID), &out, func() (any, error) {
		return user.ConvertToAPI(c, true), nil
	})
	if err != nil {
		return reportError(c, err)
	}

	return renderOk(c, out)
}

// swagger:operation GET /users/email/{email} Users UsersFindByEmail
//
// UsersFindByEmail
//
// look up whether an email address belongs to a registered account
//
// ---
// parameters:
//   - name: email
//     in: path
//     required: true
//     description: email address
// responses:
//   '200':
//     description: the matching user, without profile details
//     schema:
//       "$ref": "#/definitions/User"
func usersFindByEmail(c buffalo.Context) error {
	tx := models.Tx(c)

	var user models.User
	if err := user.FindByEmail(tx, c.Param("user_email")); err != nil {
		appErr := api.NewAppError(errors.New("no account with that email"),
			api.ErrorUserNotFound, api.CategoryNotFound)
		return reportError(c, appErr)
	}

	return renderOk(c, user.ConvertToAPI(c, false))
}

// swagger:operation PUT /users/{id} Users UsersUpdate
//
// UsersUpdate
//
// update the authenticated user's profile fields; only the user itself may
// update its record
//
// ---
// parameters:
//   - name: id
//     in: path
//     required: true
//     description: user ID
//   - name: update input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/UserUpdateInput"
// responses:
//   '200':
//     description: the updated user
//     schema:
//       "$ref": "#/definitions/User"
func usersUpdate(c buffalo.Context) error {
	user := models.CurrentUser(c)
	if user.ID.IsNil() {
		err := errors.New("only registered users have a profile")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	id, err := userID(c)
	if err != nil {
		return reportError(c, err)
	}
	if id != user.ID {
		err := errors.New("profile does not belong to the authenticated user")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	var input api.UserUpdateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Image != "" {
		user.Image = input.Image
	}

	tx := models.Tx(c)
	if err := user.Update(tx); err != nil {
		return reportError(c, err)
	}

	cache.Invalidate(c, cache.UserKey(user.ID))

	return renderOk(c, user.ConvertToAPI(c, true))
}

// swagger:operation PUT /users/email Users UsersUpdateEmail
//
// UsersUpdateEmail
//
// change the authenticated user's email address
//
// ---
// parameters:
//   - name: email input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/UserEmailUpdateInput"
// responses:
//   '200':
//     description: the updated user
//     schema:
//       "$ref": "#/definitions/User"
func usersUpdateEmail(c buffalo.Context) error {
	user := models.CurrentUser(c)
	if user.ID.IsNil() {
		err := errors.New("only registered users have an email address")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	var input api.UserEmailUpdateInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	tx := models.Tx(c)

	user.Email = strings.ToLower(input.Email)
	if err := user.Update(tx); err != nil {
		return reportError(c, err)
	}

	cache.Invalidate(c, cache.UserKey(user.ID))

	return renderOk(c, user.ConvertToAPI(c, true))
}

// swagger:operation POST /users/onboarding Users UsersOnboarding
//
// UsersOnboarding
//
// save the authenticated user's onboarding profile
//
// ---
// parameters:
//   - name: onboarding input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/UserOnboardingInput"
// responses:
//   '200':
//     description: the updated user
//     schema:
//       "$ref": "#/definitions/User"
func usersOnboarding(c buffalo.Context) error {
	user := models.CurrentUser(c)
	if user.ID.IsNil() {
		err := errors.New("only registered users can be onboarded")
		return reportError(c, api.NewAppError(err, api.ErrorNotAuthorized, api.CategoryForbidden))
	}

	var input api.UserOnboardingInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	tx := models.Tx(c)

	var info models.OnboardingInfo
	err := info.FindByUserID(tx, user.ID)
	isNew := err != nil

	info.UserID = user.ID
	info.IDNumber = input.IDNumber
	info.PhoneNumber = input.PhoneNumber
	info.VehicleNumber = input.VehicleNumber
	info.LicenseNumber = input.LicenseNumber
	info.VehicleModel = input.VehicleModel
	info.SetDocuments(input.Documents)

	if isNew {
		err = info.Create(tx)
	} else {
		err = info.Update(tx)
	}
	if err != nil {
		return reportError(c, err)
	}

	cache.Invalidate(c, cache.UserKey(user.ID))

	return renderOk(c, user.ConvertToAPI(c, true))
}

func userID(c buffalo.Context) (uuid.UUID, error) {
	id, err := uuid.FromString(c.Param(domain.TypeUser + "_id"))
	if err != nil {
		return uuid.Nil, api.NewAppError(err, api.ErrorMustBeAValidUUID, api.CategoryUser)
	}
	return id, nil
}

func renderAuthToken(c buffalo.Context, user models.User) error {
	tx := models.Tx(c)

	uat, err := user.CreateAccessToken(tx)
	if err != nil {
		return reportError(c, err)
	}

	authUser := user.ConvertToAPI(c, false)
	return renderOk(c, api.AuthToken{
		AccessToken: uat.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   uat.ExpiresAt.Unix(),
		User:        &authUser,
	})
}
