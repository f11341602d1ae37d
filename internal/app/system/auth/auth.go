// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.uber.org/zap"
)

// SessionUser is the authenticated caller, rebuilt from the store on every
// request and carried in the request context.
type SessionUser struct {
	ID          string
	Username    string
	Name        string
	Role        string
	Department  string
	Permissions []string
	TokenID     string
	ExpiresAt   time.Time
}

// IsAdmin reports whether the caller has the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && u.Role == models.RoleAdmin
}

// NewSessionUser builds the context identity from a freshly loaded user
// and the claims of the token that authenticated it.
func NewSessionUser(u *models.User, c *Claims) *SessionUser {
	su := &SessionUser{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Name:        u.FullName,
		Role:        u.Role,
		Department:  u.Department,
		Permissions: u.Permissions,
	}
	if c != nil {
		su.TokenID = c.ID
		if c.ExpiresAt != nil {
			su.ExpiresAt = c.ExpiresAt.Time
		}
	}
	return su
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user placed in context by RequireAuth.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	return FromContext(r.Context())
}

// FromContext is CurrentUser for code that only has a context.
func FromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// WithTestUser injects u into r for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(WithUser(r.Context(), u))
}

// Authorizer resolves a bearer token to a live account.
type Authorizer interface {
	Authorize(ctx context.Context, token, capability string) (*models.User, *Claims, error)
}

// Middleware authenticates API requests.
type Middleware struct {
	authz Authorizer
	log   *zap.Logger
}

// NewMiddleware returns middleware backed by a.
func NewMiddleware(a Authorizer, logger *zap.Logger) *Middleware {
	return &Middleware{authz: a, log: logger}
}

// RequireAuth rejects requests without a valid token for an active user and
// stores the SessionUser in context for the rest of the chain.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			apierr.Write(w, m.log, apierr.ErrUnauthenticated)
			return
		}
		u, claims, err := m.authz.Authorize(r.Context(), token, "")
		if err != nil {
			// A token for a deleted account is a bad token, not a missing resource.
			if errors.Is(err, apierr.ErrUserNotFound) {
				err = apierr.ErrTokenInvalid
			}
			if !apierr.IsExpected(err) {
				m.log.Error("authorize failed", zap.Error(err))
			}
			apierr.Write(w, m.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), NewSessionUser(u, claims))))
	})
}

// RequireRole admits only callers whose role is listed. It must run after
// RequireAuth.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				apierr.Write(w, nil, apierr.ErrUnauthenticated)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				apierr.Write(w, nil, apierr.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
