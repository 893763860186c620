package models

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/gobuffalo/events"
	"github.com/gobuffalo/nulls"
	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/validate/v3"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
)

// Users is a slice of User objects
type Users []User

// DefaultAvatarURL is the profile image assigned at signup until the user
// uploads their own.
const DefaultAvatarURL = "https://cdn.crashdoc.app/avatars/default.png"

// User is a registered account. The onboarding profile lives in a separate
// record and is created after registration.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email" validate:"required,email"`
	PasswordHash string    `db:"password_hash" validate:"required"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Image        string    `db:"image"`
	IsBlocked    bool      `db:"is_blocked"`
	LastLoginUTC time.Time `db:"last_login_utc"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	OnboardingInfo *OnboardingInfo `has_one:"onboarding_infos"`
}

// Validate gets run every time you call a "pop.Validate*" method.
func (u *User) Validate(tx *pop.Connection) (*validate.Errors, error) {
	return validateModel(u), nil
}

// HashAccessToken just returns a sha256.Sum256 of the input value
func HashAccessToken(accessToken string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(accessToken)))
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) FindByID(tx *pop.Connection, id uuid.UUID) error {
	return find(tx, u, id)
}

// FindByEmail locates a user by email address, case-insensitively.
func (u *User) FindByEmail(tx *pop.Connection, email string) error {
	err := tx.Where("email = ?", strings.ToLower(email)).First(u)
	return appErrorFromDB(err, api.ErrorQueryFailure)
}

// SetPassword hashes the given plaintext and stores it on the struct. It does
// not save the record.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return api.NewAppError(err, api.ErrorGenericInternalServer, api.CategoryInternal)
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword compares the given plaintext against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// GetName combines the first and last names
func (u *User) GetName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// IsOnboarded is true once an onboarding profile has been saved for the user.
func (u *User) IsOnboarded(tx *pop.Connection) bool {
	var info OnboardingInfo
	return info.FindByUserID(tx, u.ID) == nil
}

// LoadOnboardingInfo hydrates the OnboardingInfo relation if one exists.
func (u *User) LoadOnboardingInfo(tx *pop.Connection) error {
	var info OnboardingInfo
	if err := info.FindByUserID(tx, u.ID); err != nil {
		if domain.IsOtherThanNoRows(err) {
			return err
		}
		u.OnboardingInfo = nil
		return nil
	}
	u.OnboardingInfo = &info
	return nil
}

// Create stores the User data as a new record in the database.
func (u *User) Create(tx *pop.Connection) error {
	u.Email = strings.ToLower(u.Email)
	if u.Image == "" {
		u.Image = DefaultAvatarURL
	}
	if err := create(tx, u); err != nil {
		return err
	}

	e := events.Event{
		Kind:    domain.EventApiUserCreated,
		Message: fmt.Sprintf("Username: %s  Email: %s", u.GetName(), u.Email),
		Payload: events.Payload{domain.EventPayloadID: u.ID},
	}
	emitEvent(e)

	return nil
}

func (u *User) Save(tx *pop.Connection) error {
	return save(tx, u)
}

// Update writes the User data to an existing database record.
func (u *User) Update(tx *pop.Connection) error {
	return update(tx, u)
}

// CreateAccessToken creates a new token for the user and stores its hash.
func (u *User) CreateAccessToken(tx *pop.Connection) (UserAccessToken, error) {
	uat := InitAccessToken()
	uat.UserID = nulls.NewUUID(u.ID)
	if err := uat.Create(tx); err != nil {
		return UserAccessToken{}, api.NewAppError(err, api.ErrorCreatingAccessToken, api.CategoryInternal)
	}
	return uat, nil
}

// ConvertToAPI converts a models.User to an api.User
func (u *User) ConvertToAPI(ctx context.Context, hydrate bool) api.User {
	tx := Tx(ctx)

	out := api.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Image:     u.Image,
	}

	if err := u.LoadOnboardingInfo(tx); err == nil && u.OnboardingInfo != nil {
		out.Onboarded = true
		if hydrate {
			info := u.OnboardingInfo.ConvertToAPI(tx)
			out.OnboardingInfo = &info
		}
	}

	return out
}
