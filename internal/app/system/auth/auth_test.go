package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeAuthorizer struct {
	user *models.User
	err  error
}

func (f fakeAuthorizer) Authorize(ctx context.Context, token, capability string) (*models.User, *auth.Claims, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.user, &auth.Claims{}, nil
}

func okHandler(seen **auth.SessionUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen, _ = auth.CurrentUser(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_NoToken_Returns401(t *testing.T) {
	mw := auth.NewMiddleware(fakeAuthorizer{}, zap.NewNop())
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest("GET", "/api/cases", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuth_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired", apierr.ErrTokenExpired, http.StatusUnauthorized},
		{"invalid", apierr.ErrTokenInvalid, http.StatusUnauthorized},
		{"user gone", apierr.ErrUserNotFound, http.StatusUnauthorized},
		{"inactive", apierr.ErrAccountInactive, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := auth.NewMiddleware(fakeAuthorizer{err: tt.err}, zap.NewNop())
			req := httptest.NewRequest("GET", "/api/cases", nil)
			req.Header.Set("Authorization", "Bearer x")
			rec := httptest.NewRecorder()
			mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireAuth_SetsSessionUser(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Username: "admin", FullName: "System Administrator", Role: models.RoleAdmin}
	mw := auth.NewMiddleware(fakeAuthorizer{user: u}, zap.NewNop())

	var seen *auth.SessionUser
	req := httptest.NewRequest("GET", "/api/cases", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.ID != u.ID.Hex() || !seen.IsAdmin() || seen.Name != "System Administrator" {
		t.Errorf("session user = %+v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"wrong role", &auth.SessionUser{ID: "1", Role: "police"}, http.StatusForbidden},
		{"allowed", &auth.SessionUser{ID: "1", Role: "admin"}, http.StatusOK},
		{"case insensitive", &auth.SessionUser{ID: "1", Role: "ADMIN"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/api/cases/x", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			auth.RequireRole("admin")(okHandler(nil)).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
