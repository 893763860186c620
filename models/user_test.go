package models

import (
	"strings"
	"testing"
)

func (ms *ModelSuite) Test_User_Create() {
	user := User{
		Email:     "New.Person@Example.com",
		FirstName: "New",
		LastName:  "Person",
	}
	ms.NoError(user.SetPassword("correct horse battery staple"))
	ms.NoError(user.Create(ms.DB))

	ms.Equal("new.person@example.com", user.Email, "email should be lowercased")
	ms.Equal(DefaultAvatarURL, user.Image, "new users get the default avatar")

	custom := User{
		Email:     "custom@example.com",
		FirstName: "Custom",
		LastName:  "Avatar",
		Image:     "https://example.com/me.png",
	}
	ms.NoError(custom.SetPassword("correct horse battery staple"))
	ms.NoError(custom.Create(ms.DB))
	ms.Equal("https://example.com/me.png", custom.Image, "provided avatar must be kept")
}

func (ms *ModelSuite) Test_User_SetAndVerifyPassword() {
	user := CreateUserFixtures(ms.DB, 1).Users[0]

	ms.NoError(user.SetPassword("correct horse battery staple"))
	ms.NoError(user.Save(ms.DB))

	ms.True(user.VerifyPassword("correct horse battery staple"))
	ms.False(user.VerifyPassword("incorrect horse"))
	ms.False(user.VerifyPassword(""))
}

func (ms *ModelSuite) Test_User_FindByEmail() {
	user := CreateUserFixtures(ms.DB, 1).Users[0]

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:  "exact",
			email: user.Email,
		},
		{
			name:  "mixed case",
			email: strings.ToUpper(user.Email[:1]) + user.Email[1:],
		},
		{
			name:    "not found",
			email:   "nobody@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			var u User
			err := u.FindByEmail(ms.DB, tt.email)

			if tt.wantErr {
				ms.Error(err)
				return
			}
			ms.NoError(err)
			ms.Equal(user.ID, u.ID)
		})
	}
}

func (ms *ModelSuite) Test_User_IsOnboarded() {
	fixtures := CreateUserFixtures(ms.DB, 2)
	onboarded := fixtures.Users[0]
	fresh := fixtures.Users[1]

	CreateOnboardingInfoFixtures(ms.DB, Users{onboarded})

	ms.True(onboarded.IsOnboarded(ms.DB))
	ms.False(fresh.IsOnboarded(ms.DB))
}

func (ms *ModelSuite) Test_User_CreateAccessToken() {
	user := CreateUserFixtures(ms.DB, 1).Users[0]

	uat, err := user.CreateAccessToken(ms.DB)
	ms.NoError(err)

	ms.NotEmpty(uat.AccessToken)
	ms.Equal(HashAccessToken(uat.AccessToken), uat.TokenHash)
	ms.True(uat.UserID.Valid)
	ms.Equal(user.ID, uat.UserID.UUID)
	ms.False(uat.GuestID.Valid)

	var fromDB UserAccessToken
	ms.NoError(fromDB.FindByAccessToken(ms.DB, uat.AccessToken))
	ms.Equal(uat.ID, fromDB.ID)
}

func (ms *ModelSuite) Test_User_ConvertToAPI() {
	fixtures := CreateUserFixtures(ms.DB, 1)
	user := fixtures.Users[0]
	info := CreateOnboardingInfoFixtures(ms.DB, fixtures.Users).OnboardingInfos[0]

	ctx := CreateTestContext(user)

	got := user.ConvertToAPI(ctx, true)

	ms.Equal(user.ID, got.ID)
	ms.Equal(user.Email, got.Email)
	ms.True(got.Onboarded)
	ms.NotNil(got.OnboardingInfo)
	ms.Equal(info.IDNumber, got.OnboardingInfo.IDNumber)

	slim := user.ConvertToAPI(ctx, false)
	ms.True(slim.Onboarded)
	ms.Nil(slim.OnboardingInfo)
}
