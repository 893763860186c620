package actions

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/models"
)

func (as *ActionSuite) Test_guestsCreate() {
	tests := []struct {
		name       string
		input      api.GuestCreateInput
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "missing name",
			input:      api.GuestCreateInput{FirstName: "Orphan"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "good input",
			input:      api.GuestCreateInput{FirstName: "Gad", LastName: "Visitor"},
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"tokenType":"Bearer"`,
				`"accessToken":"`,
				`"firstName":"Gad"`,
				`"lastName":"Visitor"`,
			},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/guests")
			res := req.Post(tt.input)

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
		})
	}
}

// a guest token issued at creation must authenticate subsequent requests
func (as *ActionSuite) Test_guestsCreate_TokenWorks() {
	req := as.JSON("/guests")
	res := req.Post(api.GuestCreateInput{FirstName: "Trial", LastName: "Run"})
	as.Equal(http.StatusOK, res.Code, "body: %s", res.Body.String())

	var token api.AuthToken
	as.NoError(as.decodeBody(res.Body.Bytes(), &token))
	as.NotEmpty(token.AccessToken)
	as.NotNil(token.Guest)

	listReq := as.JSON("/cases")
	listReq.Headers["Authorization"] = "Bearer " + token.AccessToken
	listRes := listReq.Get()
	as.Equal(http.StatusOK, listRes.Code, "body: %s", listRes.Body.String())
}

func (as *ActionSuite) Test_guestsView() {
	f := models.CreateGuestFixtures(as.DB, 2)
	guest := f.Guests[0]
	otherGuest := f.Guests[1]

	userFixtures := models.CreateUserFixtures(as.DB, 1)
	user := userFixtures.Users[0]

	tests := []struct {
		name       string
		token      string
		id         string
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "bad uuid",
			token:      guest.FirstName,
			id:         "not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorMustBeAValidUUID)},
		},
		{
			name:       "user is not a guest",
			token:      user.Email,
			id:         guest.ID.String(),
			wantStatus: http.StatusForbidden,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorNotAuthorized)},
		},
		{
			name:       "not the requested guest",
			token:      otherGuest.FirstName,
			id:         guest.ID.String(),
			wantStatus: http.StatusForbidden,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorNotAuthorized)},
		},
		{
			name:       "own details",
			token:      guest.FirstName,
			id:         guest.ID.String(),
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"id":"` + guest.ID.String(),
				`"firstName":"` + guest.FirstName,
			},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/guests/%s", tt.id)
			req.Headers["Authorization"] = fmt.Sprintf("Bearer %s", tt.token)
			res := req.Get()

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
		})
	}
}

func (as *ActionSuite) Test_guestsUpdate() {
	f := models.CreateGuestFixtures(as.DB, 2)
	guest := f.Guests[0]
	otherGuest := f.Guests[1]

	tests := []struct {
		name       string
		token      string
		id         string
		input      api.GuestUpdateInput
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "not the requested guest",
			token:      otherGuest.FirstName,
			id:         guest.ID.String(),
			input:      api.GuestUpdateInput{FirstName: "Sly", LastName: "Renamer"},
			wantStatus: http.StatusForbidden,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorNotAuthorized)},
		},
		{
			name:       "missing name",
			token:      guest.FirstName,
			id:         guest.ID.String(),
			input:      api.GuestUpdateInput{FirstName: "NoLast"},
			wantStatus: http.StatusBadRequest,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorValidation)},
		},
		{
			name:       "good input",
			token:      guest.FirstName,
			id:         guest.ID.String(),
			input:      api.GuestUpdateInput{FirstName: "Renamed", LastName: "Guest"},
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"firstName":"Renamed"`,
				`"lastName":"Guest"`,
			},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/guests/%s", tt.id)
			req.Headers["Authorization"] = fmt.Sprintf("Bearer %s", tt.token)
			res := req.Put(tt.input)

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
		})
	}

	var fresh models.Guest
	as.NoError(as.DB.Find(&fresh, guest.ID))
	as.Equal("Renamed", fresh.FirstName, "name change was not persisted")
}
