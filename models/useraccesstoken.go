package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
)

// UserAccessToken is used by pop to map your user_access_tokens database table to your go code.
// A token belongs to exactly one principal, either a user or a guest.
type UserAccessToken struct {
	ID          uuid.UUID  `db:"id"`
	UserID      nulls.UUID `db:"user_id"`
	GuestID     nulls.UUID `db:"guest_id"`
	AccessToken string     `db:"-"`
	TokenHash   string     `db:"access_token" validate:"required"`
	ExpiresAt   time.Time  `db:"expires_at" validate:"required"`
	LastUsedAt  nulls.Time `db:"last_used_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`

	User  *User  `belongs_to:"users"`
	Guest *Guest `belongs_to:"guests"`
}

// String is not required by pop and may be deleted
func (u UserAccessToken) String() string {
	ju, _ := json.Marshal(u)
	return string(ju)
}

// UserAccessTokens is not required by pop and may be deleted
type UserAccessTokens []UserAccessToken

// Validate gets run every time you call a "pop.Validate*" method.
func (u *UserAccessToken) Validate(tx *pop.Connection) (*validate.Errors, error) {
	return validateModel(u), nil
}

// DeleteByAccessToken uses a sha256.Sum256 of the accessToken to find which UserAccessToken to delete
// returns an api.AppError
func (u *UserAccessToken) DeleteByAccessToken(tx *pop.Connection, token string) error {
	if appErr := u.FindByAccessToken(tx, token); appErr != nil {
		return appErr
	}
	if err := u.Destroy(tx); err != nil {
		panic("database error trying to destroy user access token: " + err.Error())
	}

	return nil
}

// IsExpired checks the token expiration without touching the database.
func (u *UserAccessToken) IsExpired() bool {
	return u.ExpiresAt.Before(time.Now())
}

// Replace issues a fresh token for the same principal and destroys this one.
// Used to transparently swap out an expired token mid-session.
func (u *UserAccessToken) Replace(tx *pop.Connection) (UserAccessToken, error) {
	newToken := InitAccessToken()
	newToken.UserID = u.UserID
	newToken.GuestID = u.GuestID
	if err := newToken.Create(tx); err != nil {
		return UserAccessToken{}, api.NewAppError(err, api.ErrorCreatingAccessToken, api.CategoryInternal)
	}

	if err := u.Destroy(tx); err != nil {
		return UserAccessToken{}, appErrorFromDB(err, api.ErrorDestroyFailure)
	}

	return newToken, nil
}

func (u *UserAccessToken) Destroy(tx *pop.Connection) error {
	return tx.Destroy(u)
}

// FindByAccessToken uses a sha256.Sum256 of the accessToken to find the corresponding UserAccessToken
// returns an api.AppError
func (u *UserAccessToken) FindByAccessToken(tx *pop.Connection, token string) error {
	if err := tx.Eager().Where("access_token = ?", HashAccessToken(token)).First(u); err != nil {
		l := len(token)
		if l > 5 {
			l = 5
		}

		if domain.IsOtherThanNoRows(err) {
			panic("database error trying to find user access token: " + err.Error())
		}

		appErr := api.AppError{
			Err:      err,
			Key:      api.ErrorFindingAccessToken,
			Category: api.CategoryUser,
			Message:  fmt.Sprintf("failed to find access token '%s...'", token[0:l]),
		}
		return &appErr
	}

	return nil
}

// GetUser returns the User associated with this access token, if any
func (u *UserAccessToken) GetUser(tx *pop.Connection) (User, error) {
	if !u.UserID.Valid {
		return User{}, fmt.Errorf("access token %s has no user", u.ID)
	}
	var user User
	if err := user.FindByID(tx, u.UserID.UUID); err != nil {
		return User{}, err
	}
	return user, nil
}

// GetGuest returns the Guest associated with this access token, if any
func (u *UserAccessToken) GetGuest(tx *pop.Connection) (Guest, error) {
	if !u.GuestID.Valid {
		return Guest{}, fmt.Errorf("access token %s has no guest", u.ID)
	}
	var guest Guest
	if err := guest.FindByID(tx, u.GuestID.UUID); err != nil {
		return Guest{}, err
	}
	return guest, nil
}

func createAccessTokenExpiry() time.Time {
	dtNow := time.Now()
	return dtNow.Add(time.Second * time.Duration(domain.Env.AccessTokenLifetimeSeconds))
}

// Create stores the UserAccessToken data as a new record in the database.
func (u *UserAccessToken) Create(tx *pop.Connection) error {
	return create(tx, u)
}

// Update updates the UserAccessToken data in the database.
func (u *UserAccessToken) Update(tx *pop.Connection) error {
	return update(tx, u)
}

// InitAccessToken prepares a new value for the AccessToken field and the ExpiresAt field.
func InitAccessToken() UserAccessToken {
	token, _ := getRandomToken() // The init() function would have made sure there was no error

	return UserAccessToken{
		AccessToken: token,
		TokenHash:   HashAccessToken(token),
		ExpiresAt:   createAccessTokenExpiry(),
	}
}
