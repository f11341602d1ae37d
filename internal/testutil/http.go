package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
)

// SessionFor builds the context identity for u.
func SessionFor(u models.User) *auth.SessionUser {
	return auth.NewSessionUser(&u, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if v != nil {
		if s, ok := v.(string); ok {
			body.WriteString(s)
		} else if err := json.NewEncoder(&body).Encode(v); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a JSON request with u in context.
func NewAuthenticatedRequest(t *testing.T, method, target string, v any, u *auth.SessionUser) *http.Request {
	t.Helper()
	return auth.WithTestUser(NewJSONRequest(t, method, target, v), u)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q: %s", expected, r.Body.String())
	}
}

// AssertNotContains checks the body does not contain s.
func (r *ResponseRecorder) AssertNotContains(t testing.TB, s string) {
	t.Helper()
	if strings.Contains(r.Body.String(), s) {
		t.Errorf("response body unexpectedly contains %q", s)
	}
}

// Decode unmarshals the JSON body into v.
func (r *ResponseRecorder) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}

// Authorizer is an auth.Authorizer for router tests. Tokens are handed out
// by Token and resolve to a snapshot of the user taken at that time.
type Authorizer struct {
	mu    sync.Mutex
	users map[string]models.User
}

// NewAuthorizer returns an empty Authorizer.
func NewAuthorizer() *Authorizer {
	return &Authorizer{users: map[string]models.User{}}
}

// Token registers u and returns its bearer token.
func (a *Authorizer) Token(u models.User) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	tok := "test-token-" + u.ID.Hex()
	a.users[tok] = u
	return tok
}

// Authorize implements auth.Authorizer.
func (a *Authorizer) Authorize(_ context.Context, token, _ string) (*models.User, *auth.Claims, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[token]
	if !ok {
		return nil, nil, apierr.ErrTokenInvalid
	}
	return &u, nil, nil
}

// WithBearer sets the Authorization header and returns req.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
