package models

import (
	"testing"
	"time"

	"github.com/gobuffalo/nulls"

	"github.com/crashdoc/crashdoc-api/api"
)

func (ms *ModelSuite) Test_UserAccessToken_Validate() {
	user := CreateUserFixtures(ms.DB, 1).Users[0]
	guest := CreateGuestFixtures(ms.DB, 1).Guests[0]

	tests := []struct {
		name    string
		token   UserAccessToken
		wantErr bool
	}{
		{
			name: "user token",
			token: UserAccessToken{
				UserID:    nulls.NewUUID(user.ID),
				TokenHash: HashAccessToken("abc123"),
				ExpiresAt: time.Now().Add(time.Minute),
			},
		},
		{
			name: "guest token",
			token: UserAccessToken{
				GuestID:   nulls.NewUUID(guest.ID),
				TokenHash: HashAccessToken("def456"),
				ExpiresAt: time.Now().Add(time.Minute),
			},
		},
		{
			name: "no principal",
			token: UserAccessToken{
				TokenHash: HashAccessToken("ghi789"),
				ExpiresAt: time.Now().Add(time.Minute),
			},
			wantErr: true,
		},
		{
			name: "both principals",
			token: UserAccessToken{
				UserID:    nulls.NewUUID(user.ID),
				GuestID:   nulls.NewUUID(guest.ID),
				TokenHash: HashAccessToken("jkl012"),
				ExpiresAt: time.Now().Add(time.Minute),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			vErrs, err := tt.token.Validate(ms.DB)
			ms.NoError(err)

			if tt.wantErr {
				ms.True(vErrs.HasAny(), "expected a validation error")
				return
			}
			ms.False(vErrs.HasAny(), "unexpected validation errors: %s", flattenPopErrors(vErrs))
		})
	}
}

func (ms *ModelSuite) Test_UserAccessToken_FindByAccessToken() {
	fixtures := CreateUserFixtures(ms.DB, 1)
	user := fixtures.Users[0]

	ms.T().Run("found", func(t *testing.T) {
		var uat UserAccessToken
		ms.NoError(uat.FindByAccessToken(ms.DB, user.Email))
		ms.True(uat.UserID.Valid)
		ms.Equal(user.ID, uat.UserID.UUID)
	})

	ms.T().Run("not found", func(t *testing.T) {
		var uat UserAccessToken
		err := uat.FindByAccessToken(ms.DB, "no-such-token")
		ms.EqualAppError(api.AppError{Key: api.ErrorFindingAccessToken, Category: api.CategoryUser}, err)
	})
}

func (ms *ModelSuite) Test_UserAccessToken_Replace() {
	fixtures := CreateUserFixtures(ms.DB, 1)
	user := fixtures.Users[0]
	old := fixtures.UserAccessTokens[0]

	newToken, err := old.Replace(ms.DB)
	ms.NoError(err)

	ms.NotEmpty(newToken.AccessToken)
	ms.NotEqual(old.TokenHash, newToken.TokenHash)
	ms.True(newToken.UserID.Valid)
	ms.Equal(user.ID, newToken.UserID.UUID)

	// the old token is gone
	var uat UserAccessToken
	ms.Error(uat.FindByAccessToken(ms.DB, user.Email))

	// the new one works
	ms.NoError(uat.FindByAccessToken(ms.DB, newToken.AccessToken))
	ms.Equal(newToken.ID, uat.ID)
}

func (ms *ModelSuite) Test_UserAccessToken_IsExpired() {
	uat := UserAccessToken{ExpiresAt: time.Now().Add(time.Minute)}
	ms.False(uat.IsExpired())

	uat.ExpiresAt = time.Now().Add(-time.Minute)
	ms.True(uat.IsExpired())
}

func (ms *ModelSuite) Test_UserAccessToken_GetPrincipal() {
	userFixtures := CreateUserFixtures(ms.DB, 1)
	guestFixtures := CreateGuestFixtures(ms.DB, 1)

	userToken := userFixtures.UserAccessTokens[0]
	guestToken := guestFixtures.UserAccessTokens[0]

	gotUser, err := userToken.GetUser(ms.DB)
	ms.NoError(err)
	ms.Equal(userFixtures.Users[0].ID, gotUser.ID)

	_, err = userToken.GetGuest(ms.DB)
	ms.Error(err)

	gotGuest, err := guestToken.GetGuest(ms.DB)
	ms.NoError(err)
	ms.Equal(guestFixtures.Guests[0].ID, gotGuest.ID)

	_, err = guestToken.GetUser(ms.DB)
	ms.Error(err)
}
