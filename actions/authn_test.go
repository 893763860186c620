package actions

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gobuffalo/nulls"

	"github.com/crashdoc/crashdoc-api/models"
)

func (as *ActionSuite) Test_AuthN() {
	f := models.CreateUserFixtures(as.DB, 2)
	user := f.Users[0]

	blocked := f.Users[1]
	blocked.IsBlocked = true
	as.NoError(blocked.Update(as.DB))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "no bearer token",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			authHeader: "Bearer doesnt-exist",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "blocked user token",
			authHeader: "Bearer " + blocked.Email,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + user.Email,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			req := as.JSON("/cases")
			if tt.authHeader != "" {
				req.Headers["Authorization"] = tt.authHeader
			}
			res := req.Get()

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
		})
	}
}

// an expired token is replaced in flight and the new token is handed back in
// the response Authorization header
func (as *ActionSuite) Test_AuthN_ExpiredTokenReplaced() {
	f := models.CreateUserFixtures(as.DB, 1)
	user := f.Users[0]

	expiredToken := "expired-" + user.Email
	uat := models.UserAccessToken{
		UserID:    nulls.NewUUID(user.ID),
		TokenHash: models.HashAccessToken(expiredToken),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	models.MustCreate(as.DB, &uat)

	req := as.JSON("/cases")
	req.Headers["Authorization"] = "Bearer " + expiredToken
	res := req.Get()

	as.Equal(http.StatusOK, res.Code, "body: %s", res.Body.String())

	newHeader := res.Header().Get("Authorization")
	as.True(strings.HasPrefix(newHeader, "Bearer "), "expected a replacement token, got %q", newHeader)
	newToken := strings.TrimPrefix(newHeader, "Bearer ")
	as.NotEqual(expiredToken, newToken)

	// the old token no longer authenticates
	oldReq := as.JSON("/cases")
	oldReq.Headers["Authorization"] = "Bearer " + expiredToken
	as.Equal(http.StatusUnauthorized, oldReq.Get().Code)

	// the replacement does
	newReq := as.JSON("/cases")
	newReq.Headers["Authorization"] = "Bearer " + newToken
	as.Equal(http.StatusOK, newReq.Get().Code)
}
