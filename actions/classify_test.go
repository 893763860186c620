package actions

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/classifier"
	"github.com/crashdoc/crashdoc-api/models"
)

func (as *ActionSuite) Test_uploadClassify() {
	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"2"}`))
	}))
	defer modelServer.Close()

	failingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failingServer.Close()

	f := models.CreateUserFixtures(as.DB, 1)
	user := f.Users[0]

	tests := []struct {
		name       string
		endpoint   string
		token      string
		input      api.ClassificationInput
		wantStatus int
		wantInBody []string
	}{
		{
			name:       "unauthenticated",
			endpoint:   modelServer.URL,
			token:      "doesnt-exist",
			input:      api.ClassificationInput{ImageURLs: []string{"https://files.example.com/dmg.jpg"}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "moderate damage",
			endpoint:   modelServer.URL,
			token:      user.Email,
			input:      api.ClassificationInput{ImageURLs: []string{"https://files.example.com/dmg.jpg"}},
			wantStatus: http.StatusOK,
			wantInBody: []string{
				`"severity":"` + api.DamageSeverityModerate + `"`,
				`$750 and $1,500`,
			},
		},
		{
			name:       "no photos grade as unknown without an upstream call",
			endpoint:   failingServer.URL,
			token:      user.Email,
			input:      api.ClassificationInput{},
			wantStatus: http.StatusOK,
			wantInBody: []string{`"severity":"` + api.DamageSeverityUnknown + `"`},
		},
		{
			name:       "upstream failure",
			endpoint:   failingServer.URL,
			token:      user.Email,
			input:      api.ClassificationInput{ImageURLs: []string{"https://files.example.com/other.jpg"}},
			wantStatus: http.StatusInternalServerError,
			wantInBody: []string{fmt.Sprintf(`"key":"%s"`, api.ErrorClassificationFailed)},
		},
	}

	for _, tt := range tests {
		as.T().Run(tt.name, func(t *testing.T) {
			damageClassifier = classifier.New(tt.endpoint, time.Millisecond)

			req := as.JSON("/upload")
			req.Headers["Authorization"] = "Bearer " + tt.token
			res := req.Post(tt.input)

			as.Equal(tt.wantStatus, res.Code, "incorrect status code returned, body: %s", res.Body.String())
			as.verifyResponseData(tt.wantInBody, res.Body.String(), "")
		})
	}

	damageClassifier = nil
}
