package actions

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/models"
)

func (as *ActionSuite) Test_casesList() {
	f := models.CreateCaseFixtures(as.DB, models.FixturesConfig{
		NumberOfUsers:  2,
		NumberOfGuests: 1,
		CasesPerOwner:  2,
	})
	user := f.Users[0]
	guest := f.Guests[0]

	userCases := f.Cases[0:2]
	otherUserCases := f.Cases[2:4]
	guestCases := f.Cases[4:6]

	tests := []struct {
		name        string
		token       string
		wantStatus  int
		wantInBody  []string
		notWantBody []string
	}{
		{
			name:       "unauthenticated",
			token:      "doesnt-exist",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user sees only own cases",
			token:      user.Email,
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"id":"` + userCases[0].ID.String(),
				`"id":"` + userCases[1].ID.String(),
			},
			notWantBody: []string{
				otherUserCases[0].ID.String(),
				guestCases[0].ID.String(),
			},
		},
		{
			name:       "guest sees only own cases",
			token:      guest.FirstName,
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"id":"` + guestCases[0].ID.String(),
				`"id":"` + guestCases[1].ID.String(),
			},
			notWantBody: []string{
				userCases[0].ID.String(),
			},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/cases")
			req.Headers["Authorization"] = fmt.Sprintf("Bearer %s", tt.token)
			res := req.Get()

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
			for _, nw := range tt.notWantBody {
				as.NotContains(res.Body.String(), nw)
			}
		})
	}
}

func (as *ActionSuite) Test_casesView() {
	f := models.CreateCaseFixtures(as.DB, models.FixturesConfig{
		NumberOfUsers:  2,
		NumberOfGuests: 0,
		CasesPerOwner:  1,
	})
	owner := f.Users[0]
	other := f.Users[1]
	ownedCase := f.Cases[0]

	tests := []struct {
		name       string
		token      string
		caseID     string
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "invalid ID",
			token:      owner.Email,
			caseID:     "not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorMustBeAValidUUID)},
		},
		{
			name:       "unknown ID",
			token:      owner.Email,
			caseID:     domain.GetUUID().String(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "not the owner",
			token:      other.Email,
			caseID:     ownedCase.ID.String(),
			wantStatus: http.StatusForbidden,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorNotAuthorized)},
		},
		{
			name:       "owner",
			token:      owner.Email,
			caseID:     ownedCase.ID.String(),
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"id":"` + ownedCase.ID.String(),
				`"referenceNumber":"` + ownedCase.ReferenceNumber + `"`,
				`"status":"` + string(api.CaseStatusFiled) + `"`,
				`"userId":"` + owner.ID.String() + `"`,
			},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/cases/%s", tt.caseID)
			req.Headers["Authorization"] = fmt.Sprintf("Bearer %s", tt.token)
			res := req.Get()

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
		})
	}
}

func (as *ActionSuite) Test_casesCreate() {
	userFixtures := models.CreateUserFixtures(as.DB, 2)
	onboardedUser := userFixtures.Users[0]
	newUser := userFixtures.Users[1]
	infoFixtures := models.CreateOnboardingInfoFixtures(as.DB, models.Users{onboardedUser})
	info := infoFixtures.OnboardingInfos[0]

	guestFixtures := models.CreateGuestFixtures(as.DB, 1)
	guest := guestFixtures.Guests[0]

	thirdParty := api.ThirdPartyInfo{
		IDNumber:      "987654321",
		PhoneNumber:   "0529876543",
		VehicleNumber: "7654321",
		LicenseNumber: "1234567",
		VehicleModel:  "Mazda3",
	}
	reporter := api.OnboardingInfo{
		IDNumber:      "123456789",
		PhoneNumber:   "0521234567",
		VehicleNumber: "12345678",
		LicenseNumber: "7654321",
		VehicleModel:  "Corolla",
	}

	tests := []struct {
		name       string
		token      string
		input      api.CaseCreateInput
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "user not onboarded",
			token:      newUser.Email,
			input:      api.CaseCreateInput{ThirdParty: thirdParty},
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorNotOnboarded)},
		},
		{
			name:       "guest without reporter details",
			token:      guest.FirstName,
			input:      api.CaseCreateInput{ThirdParty: thirdParty},
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorValidation)},
		},
		{
			name:  "onboarded user",
			token: onboardedUser.Email,
			input: api.CaseCreateInput{
				ThirdParty:      thirdParty,
				DamagePhotos:    api.DamagePhotoSet{DamagePhoto1: "https://files.example.com/dmg1.jpg"},
				DamageSeverity:  api.DamageSeverityModerate,
				DamageNarrative: "damage assessed around $750 - $1,500",
			},
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"status":"` + string(api.CaseStatusPending) + `"`,
				`"userId":"` + info.IDNumber + `"`,
				`"vehicleNumber":"` + info.VehicleNumber + `"`,
				`"damageSeverity":"` + api.DamageSeverityModerate + `"`,
				`"damagePhoto1":"https://files.example.com/dmg1.jpg"`,
			},
		},
		{
			name:  "guest with reporter details",
			token: guest.FirstName,
			input: api.CaseCreateInput{
				Reporter:   &reporter,
				ThirdParty: thirdParty,
			},
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"status":"` + string(api.CaseStatusPending) + `"`,
				`"userId":"` + reporter.IDNumber + `"`,
				`"vehicleModel":"` + reporter.VehicleModel + `"`,
			},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/cases")
			req.Headers["Authorization"] = fmt.Sprintf("Bearer %s", tt.token)
			res := req.Post(tt.input)

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")

			if res.Code != http.StatusOK {
				return
			}

			// the new case has no owner until the follow-up assignment
			var created api.Case
			as.NoError(as.decodeBody(res.Body.Bytes(), &created))
			as.Nil(created.UserID)
			as.Nil(created.GuestID)
			as.Len(created.ReferenceNumber, 7)
		})
	}
}

func (as *ActionSuite) Test_casesUpdateOwner() {
	userFixtures := models.CreateUserFixtures(as.DB, 2)
	user := userFixtures.Users[0]
	otherUser := userFixtures.Users[1]
	models.CreateOnboardingInfoFixtures(as.DB, userFixtures.Users)

	guestFixtures := models.CreateGuestFixtures(as.DB, 1)
	guest := guestFixtures.Guests[0]

	newPendingCase := func() api.Case {
		req := as.JSON("/cases")
		req.Headers["Authorization"] = "Bearer " + user.Email
		res := req.Post(api.CaseCreateInput{ThirdParty: api.ThirdPartyInfo{
			IDNumber:      "987654321",
			PhoneNumber:   "0529876543",
			VehicleNumber: "7654321",
			LicenseNumber: "1234567",
			VehicleModel:  "Mazda3",
		}})
		as.Equal(http.StatusOK, res.Code, "failed to create pending case, body: %s", res.Body.String())

		var created api.Case
		as.NoError(as.decodeBody(res.Body.Bytes(), &created))
		return created
	}

	as.T().Run("assign to self", func(t *testing.T) {
		pending := newPendingCase()

		req := as.JSON("/cases/%s", pending.ID)
		req.Headers["Authorization"] = "Bearer " + user.Email
		res := req.Put(api.CaseOwnerUpdateInput{UserID: &user.ID})

		as.Equal(http.StatusOK, res.Code, "body: %s", res.Body.String())
		as.verifyResponseData([]string{
			`"status":"` + string(api.CaseStatusFiled) + `"`,
			`"userId":"` + user.ID.String() + `"`,
		}, res.Body.String(), "")
	})

	as.T().Run("cannot take over a filed case", func(t *testing.T) {
		filed := newPendingCase()

		req := as.JSON("/cases/%s", filed.ID)
		req.Headers["Authorization"] = "Bearer " + user.Email
		res := req.Put(api.CaseOwnerUpdateInput{UserID: &user.ID})
		as.Equal(http.StatusOK, res.Code, "body: %s", res.Body.String())

		// another principal self-assigning someone else's filed case is rejected
		req = as.JSON("/cases/%s", filed.ID)
		req.Headers["Authorization"] = "Bearer " + otherUser.Email
		res = req.Put(api.CaseOwnerUpdateInput{UserID: &otherUser.ID})

		as.Equal(http.StatusBadRequest, res.Code, "body: %s", res.Body.String())
		as.verifyResponseData([]string{fmt.Sprintf(`"key":"%s"`, api.ErrorCaseNotPending)}, res.Body.String(), "")

		var fromDB models.Case
		as.NoError(fromDB.FindByID(as.DB, filed.ID))
		as.True(fromDB.IsOwnedBy(user.ID), "filed case must keep its original owner")
	})

	as.T().Run("cannot assign to someone else", func(t *testing.T) {
		pending := newPendingCase()

		req := as.JSON("/cases/%s", pending.ID)
		req.Headers["Authorization"] = "Bearer " + user.Email
		res := req.Put(api.CaseOwnerUpdateInput{UserID: &otherUser.ID})

		as.Equal(http.StatusForbidden, res.Code, "body: %s", res.Body.String())
	})

	as.T().Run("both owners rejected", func(t *testing.T) {
		pending := newPendingCase()

		req := as.JSON("/cases/%s", pending.ID)
		req.Headers["Authorization"] = "Bearer " + user.Email
		res := req.Put(api.CaseOwnerUpdateInput{UserID: &user.ID, GuestID: &guest.ID})

		as.Equal(http.StatusForbidden, res.Code, "body: %s", res.Body.String())
	})

	as.T().Run("no owner rejected", func(t *testing.T) {
		pending := newPendingCase()

		req := as.JSON("/cases/%s", pending.ID)
		req.Headers["Authorization"] = "Bearer " + user.Email
		res := req.Put(api.CaseOwnerUpdateInput{})

		as.Equal(http.StatusBadRequest, res.Code, "body: %s", res.Body.String())
	})

	// a repeated creation call files a second, independent case
	as.T().Run("duplicate creation is not deduplicated", func(t *testing.T) {
		first := newPendingCase()
		second := newPendingCase()
		as.NotEqual(first.ID, second.ID)
		as.NotEqual(first.ReferenceNumber, second.ReferenceNumber)
	})
}

func (as *ActionSuite) Test_casesDestroy() {
	f := models.CreateCaseFixtures(as.DB, models.FixturesConfig{
		NumberOfUsers:  2,
		NumberOfGuests: 1,
		CasesPerOwner:  1,
	})
	owner := f.Users[0]
	other := f.Users[1]
	ownedCase := f.Cases[0]
	guest := f.Guests[0]
	guestCase := f.Cases[2]

	tests := []struct {
		name       string
		token      string
		caseID     string
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "invalid ID",
			token:      owner.Email,
			caseID:     "not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorMustBeAValidUUID)},
		},
		{
			name:       "unknown ID",
			token:      owner.Email,
			caseID:     domain.GetUUID().String(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "not the owner",
			token:      other.Email,
			caseID:     ownedCase.ID.String(),
			wantStatus: http.StatusForbidden,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorNotAuthorized)},
		},
		{
			name:       "owner",
			token:      owner.Email,
			caseID:     ownedCase.ID.String(),
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "guest owner",
			token:      guest.FirstName,
			caseID:     guestCase.ID.String(),
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/cases/%s", tt.caseID)
			req.Headers["Authorization"] = fmt.Sprintf("Bearer %s", tt.token)
			res := req.Delete()

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
		})
	}

	var remaining models.Cases
	as.NoError(as.DB.Where("user_id = ?", owner.ID).All(&remaining))
	as.Len(remaining, 0, "deleted case still present")
}
