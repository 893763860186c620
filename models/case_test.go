package models

import (
	"testing"
	"time"

	"github.com/gobuffalo/nulls"

	"github.com/crashdoc/crashdoc-api/api"
)

func (ms *ModelSuite) Test_Case_Validate() {
	good := createCaseFixture(ms.DB, randOnboardingInfo())

	tests := []struct {
		name     string
		modifier func(*Case)
		wantKey  string
	}{
		{
			name:     "good",
			modifier: func(c *Case) {},
		},
		{
			name:     "reporter id number too short",
			modifier: func(c *Case) { c.ReporterIDNumber = "12345678" },
			wantKey:  "Case.ReporterIDNumber",
		},
		{
			name:     "reporter phone number not ten digits",
			modifier: func(c *Case) { c.ReporterPhoneNumber = "123456789" },
			wantKey:  "Case.ReporterPhoneNumber",
		},
		{
			name:     "third party vehicle number too long",
			modifier: func(c *Case) { c.ThirdPartyVehicleNumber = "123456789" },
			wantKey:  "Case.ThirdPartyVehicleNumber",
		},
		{
			name:     "third party license number not numeric",
			modifier: func(c *Case) { c.ThirdPartyLicenseNumber = "abc1234" },
			wantKey:  "Case.ThirdPartyLicenseNumber",
		},
		{
			name:     "vehicle model too long",
			modifier: func(c *Case) { c.ThirdPartyVehicleModel = "abcdefghijklmnopqrstu" },
			wantKey:  "Case.ThirdPartyVehicleModel",
		},
		{
			name:     "vehicle model with punctuation",
			modifier: func(c *Case) { c.ReporterVehicleModel = "mazda-3" },
			wantKey:  "Case.ReporterVehicleModel",
		},
	}

	for _, tt := range tests {
		ms.T().Run(tt.name, func(t *testing.T) {
			c := good
			tt.modifier(&c)

			vErrs, err := c.Validate(ms.DB)
			ms.NoError(err)

			if tt.wantKey == "" {
				ms.False(vErrs.HasAny(), "unexpected validation errors: %s", flattenPopErrors(vErrs))
				return
			}
			ms.Contains(vErrs.Errors, tt.wantKey)
		})
	}
}

func (ms *ModelSuite) Test_Case_Create() {
	c := createCaseFixture(ms.DB, randOnboardingInfo())

	ms.Equal(api.CaseStatusPending, c.Status, "a new case should be pending")
	ms.Len(c.ReferenceNumber, CaseReferenceNumberLength)
	ms.False(c.UserID.Valid)
	ms.False(c.GuestID.Valid)
}

func (ms *ModelSuite) Test_Case_AssignOwner() {
	f := CreateUserFixtures(ms.DB, 1)
	g := CreateGuestFixtures(ms.DB, 1)
	user := f.Users[0]
	guest := g.Guests[0]

	ms.T().Run("user owner", func(t *testing.T) {
		c := createCaseFixture(ms.DB, randOnboardingInfo())
		ms.NoError(c.AssignOwner(ms.DB, &user.ID, nil))

		var fromDB Case
		ms.NoError(fromDB.FindByID(ms.DB, c.ID))
		ms.Equal(api.CaseStatusFiled, fromDB.Status)
		ms.True(fromDB.IsOwnedBy(user.ID))
		ms.False(fromDB.GuestID.Valid)
	})

	ms.T().Run("guest owner", func(t *testing.T) {
		c := createCaseFixture(ms.DB, randOnboardingInfo())
		ms.NoError(c.AssignOwner(ms.DB, nil, &guest.ID))

		var fromDB Case
		ms.NoError(fromDB.FindByID(ms.DB, c.ID))
		ms.Equal(api.CaseStatusFiled, fromDB.Status)
		ms.True(fromDB.IsOwnedBy(guest.ID))
	})

	ms.T().Run("no owner", func(t *testing.T) {
		c := createCaseFixture(ms.DB, randOnboardingInfo())
		err := c.AssignOwner(ms.DB, nil, nil)
		ms.EqualAppError(api.AppError{Key: api.ErrorValidation, Category: api.CategoryUser}, err)
	})

	ms.T().Run("both owners", func(t *testing.T) {
		c := createCaseFixture(ms.DB, randOnboardingInfo())
		err := c.AssignOwner(ms.DB, &user.ID, &guest.ID)
		ms.EqualAppError(api.AppError{Key: api.ErrorValidation, Category: api.CategoryUser}, err)
	})

	ms.T().Run("already filed", func(t *testing.T) {
		c := createCaseFixture(ms.DB, randOnboardingInfo())
		ms.NoError(c.AssignOwner(ms.DB, &user.ID, nil))

		otherUser := CreateUserFixtures(ms.DB, 1).Users[0]
		err := c.AssignOwner(ms.DB, &otherUser.ID, nil)
		ms.EqualAppError(api.AppError{Key: api.ErrorCaseNotPending, Category: api.CategoryUser}, err)

		var fromDB Case
		ms.NoError(fromDB.FindByID(ms.DB, c.ID))
		ms.True(fromDB.IsOwnedBy(user.ID), "filed case must keep its original owner")
	})

	ms.T().Run("already owned", func(t *testing.T) {
		c := createCaseFixture(ms.DB, randOnboardingInfo())
		c.UserID = nulls.NewUUID(user.ID)
		ms.NoError(c.Update(ms.DB))

		err := c.AssignOwner(ms.DB, &user.ID, nil)
		ms.EqualAppError(api.AppError{Key: api.ErrorCaseNotPending, Category: api.CategoryUser}, err)
	})
}

func (ms *ModelSuite) Test_Cases_AllForOwner() {
	fixtures := CreateCaseFixtures(ms.DB, FixturesConfig{
		NumberOfUsers:  2,
		NumberOfGuests: 1,
		CasesPerOwner:  2,
	})
	user := fixtures.Users[0]
	guest := fixtures.Guests[0]

	var userCases Cases
	ms.NoError(userCases.AllForUser(ms.DB, user.ID))
	ms.Len(userCases, 2)
	for _, c := range userCases {
		ms.True(c.IsOwnedBy(user.ID))
	}

	var guestCases Cases
	ms.NoError(guestCases.AllForGuest(ms.DB, guest.ID))
	ms.Len(guestCases, 2)
	for _, c := range guestCases {
		ms.True(c.IsOwnedBy(guest.ID))
	}

	var otherUserCases Cases
	ms.NoError(otherUserCases.AllForUser(ms.DB, fixtures.Users[1].ID))
	ms.Len(otherUserCases, 2)
}

func (ms *ModelSuite) Test_Case_ConvertToAPI() {
	fixtures := CreateCaseFixtures(ms.DB, FixturesConfig{
		NumberOfUsers: 1,
		CasesPerOwner: 1,
	})
	c := fixtures.Cases[0]

	got := c.ConvertToAPI(ms.DB)

	ms.Equal(c.ID, got.ID)
	ms.Equal(c.ReferenceNumber, got.ReferenceNumber)
	ms.Equal(api.CaseStatusFiled, got.Status)
	ms.NotNil(got.UserID)
	ms.Equal(c.UserID.UUID, *got.UserID)
	ms.Nil(got.GuestID)
	ms.Equal(c.ReporterIDNumber, got.Reporter.IDNumber)
	ms.Equal(c.ThirdPartyPhoneNumber, got.ThirdParty.PhoneNumber)
	ms.Equal(c.DamagePhoto1URL, got.DamagePhotos.DamagePhoto1)
	ms.Equal(c.DamageSeverity, got.DamageSeverity)
}

func (ms *ModelSuite) Test_Case_ConvertToAPI_RefreshesExpiredURLs() {
	user := CreateUserFixtures(ms.DB, 1).Users[0]
	file := createFileFixture(ms.DB, user.ID, time.Now().Add(-time.Hour))

	c := createCaseFixture(ms.DB, randOnboardingInfo())
	c.DamagePhoto1URL = file.URL
	c.DamagePhoto2URL = "https://elsewhere.example.com/not-ours.jpg"
	ms.NoError(c.Update(ms.DB))

	got := c.ConvertToAPI(ms.DB)

	ms.NotEqual(file.URL, got.DamagePhotos.DamagePhoto1, "expired document URL must be replaced")

	var fromDB File
	ms.NoError(fromDB.Find(ms.DB, file.ID))
	ms.Equal(fromDB.URL, got.DamagePhotos.DamagePhoto1)
	ms.True(fromDB.URLExpiration.After(time.Now()), "refreshed URL expiration must be in the future")

	// a URL that references no stored file passes through unchanged
	ms.Equal(c.DamagePhoto2URL, got.DamagePhotos.DamagePhoto2)
}

func (ms *ModelSuite) Test_Case_Create_LinksFiles() {
	user := CreateUserFixtures(ms.DB, 1).Users[0]
	file := createFileFixture(ms.DB, user.ID, time.Now().Add(time.Hour))

	newCase := func() Case {
		c := Case{
			DamagePhoto1URL: file.URL,
			DamagePhoto2URL: "https://files.example.com/" + randStr(10) + ".jpg",
			DamageSeverity:  api.DamageSeverityLight,
		}
		c.SetReporterInfo(randOnboardingInfo())
		c.SetThirdPartyInfo(api.ThirdPartyInfo{
			IDNumber:      "123456789",
			PhoneNumber:   "0512345678",
			VehicleNumber: "1234567",
			LicenseNumber: "1234567",
			VehicleModel:  "model3",
		})
		return c
	}

	first := newCase()
	ms.NoError(first.Create(ms.DB))

	var fromDB File
	ms.NoError(fromDB.Find(ms.DB, file.ID))
	ms.True(fromDB.Linked, "referenced file must be linked on case creation")

	// a duplicate submission reuses the same uploads without error
	second := newCase()
	ms.NoError(second.Create(ms.DB))
	ms.NotEqual(first.ID, second.ID)

	ms.NoError(fromDB.Find(ms.DB, file.ID))
	ms.True(fromDB.Linked)
}
