package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/crashdoc/crashdoc-api/api"
)

// APIError is a non-2xx response from the server, carrying the decoded error
// body when one was provided.
type APIError struct {
	StatusCode int
	AppError   api.AppError
}

func (e *APIError) Error() string {
	if e.AppError.Key != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.AppError.Message, e.AppError.Key)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Client is a REST client for the CrashDoc API. Every authenticated call
// carries the stored session's bearer token, and a replacement token returned
// by the server is captured back into the Store before the response is
// handed to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store
}

// NewClient builds a Client against the given base URL, persisting session
// state in store.
func NewClient(baseURL string, store Store) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: time.Second * 30},
		store:      store,
	}
}

// CreateUser registers a new account and stores the resulting session.
func (c *Client) CreateUser(ctx context.Context, input api.UserCreateInput) (api.AuthToken, error) {
	var token api.AuthToken
	if err := c.do(ctx, http.MethodPost, "/users", input, &token); err != nil {
		return api.AuthToken{}, err
	}
	return token, c.adoptAuthToken(token)
}

// Login authenticates an existing account and stores the resulting session.
func (c *Client) Login(ctx context.Context, input api.UserLoginInput) (api.AuthToken, error) {
	var token api.AuthToken
	if err := c.do(ctx, http.MethodPost, "/users/login", input, &token); err != nil {
		return api.AuthToken{}, err
	}
	return token, c.adoptAuthToken(token)
}

// CreateGuest starts a guest flow and stores the resulting session.
func (c *Client) CreateGuest(ctx context.Context, input api.GuestCreateInput) (api.AuthToken, error) {
	var token api.AuthToken
	if err := c.do(ctx, http.MethodPost, "/guests", input, &token); err != nil {
		return api.AuthToken{}, err
	}
	return token, c.adoptAuthToken(token)
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (api.User, error) {
	var user api.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &user)
	return user, err
}

// SaveOnboarding stores the authenticated user's onboarding profile.
func (c *Client) SaveOnboarding(ctx context.Context, input api.UserOnboardingInput) (api.User, error) {
	var user api.User
	err := c.do(ctx, http.MethodPost, "/users/onboarding", input, &user)
	return user, err
}

// ListCases fetches the cases owned by the session's principal.
func (c *Client) ListCases(ctx context.Context) (api.Cases, error) {
	var cases api.Cases
	err := c.do(ctx, http.MethodGet, "/cases", nil, &cases)
	return cases, err
}

// GetCase fetches one case by ID.
func (c *Client) GetCase(ctx context.Context, id uuid.UUID) (api.Case, error) {
	var cs api.Case
	err := c.do(ctx, http.MethodGet, "/cases/"+id.String(), nil, &cs)
	return cs, err
}

// CreateCase files a new case. The returned case has no owner until
// AssignCaseOwner completes the filing.
func (c *Client) CreateCase(ctx context.Context, input api.CaseCreateInput) (api.Case, error) {
	var cs api.Case
	err := c.do(ctx, http.MethodPost, "/cases", input, &cs)
	return cs, err
}

// AssignCaseOwner assigns a pending case to the given owner.
func (c *Client) AssignCaseOwner(ctx context.Context, id uuid.UUID, input api.CaseOwnerUpdateInput) (api.Case, error) {
	var cs api.Case
	err := c.do(ctx, http.MethodPut, "/cases/"+id.String(), input, &cs)
	return cs, err
}

// Classify grades a set of damage photo URLs.
func (c *Client) Classify(ctx context.Context, input api.ClassificationInput) (api.ClassificationOutput, error) {
	var out api.ClassificationOutput
	err := c.do(ctx, http.MethodPost, "/upload", input, &out)
	return out, err
}

// UploadFile uploads image content and returns its stored URL.
func (c *Client) UploadFile(ctx context.Context, name string, content []byte) (api.FileUploadOutput, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return api.FileUploadOutput{}, errors.Wrap(err, "building multipart upload")
	}
	if _, err := part.Write(content); err != nil {
		return api.FileUploadOutput{}, errors.Wrap(err, "writing multipart upload")
	}
	if err := writer.Close(); err != nil {
		return api.FileUploadOutput{}, errors.Wrap(err, "closing multipart upload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/file", &body)
	if err != nil {
		return api.FileUploadOutput{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out api.FileUploadOutput
	err = c.send(req, &out)
	return out, err
}

// Session returns the stored session.
func (c *Client) Session() (Session, error) {
	return c.store.Load()
}

func (c *Client) adoptAuthToken(token api.AuthToken) error {
	session := Session{Token: token.AccessToken}
	if token.User != nil {
		session.UserID = token.User.ID
	}
	if token.Guest != nil {
		session.GuestID = token.Guest.ID
	}
	return c.store.Save(session)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s request", method, path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	session, err := c.store.Load()
	if err != nil {
		return errors.Wrap(err, "loading session")
	}
	if session.HasToken() {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.captureReplacementToken(session, resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, &apiErr.AppError)
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// captureReplacementToken adopts a token the server minted to replace an
// expired one, so later calls authenticate with the fresh token.
func (c *Client) captureReplacementToken(session Session, resp *http.Response) {
	header := resp.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return
	}
	newToken := strings.TrimPrefix(header, "Bearer ")
	if newToken == "" || newToken == session.Token {
		return
	}
	session.Token = newToken
	_ = c.store.Save(session)
}
