package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func reqWith(u *auth.SessionUser) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	if u == nil {
		return r
	}
	return auth.WithTestUser(r, u)
}

func TestHasCapability(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		perms []string
		cap   string
		want  bool
	}{
		{"admin without tags", "admin", nil, "users_delete", true},
		{"police with tag", "police", []string{"cases_delete"}, "cases_delete", true},
		{"police with all", "police", []string{"all"}, "reports_read", true},
		{"police without tag", "police", []string{"cases_read"}, "reports_read", false},
		{"police no tags", "police", nil, "cases_delete", false},
		{"empty capability", "police", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.HasCapability(tt.role, tt.perms, tt.cap); got != tt.want {
				t.Errorf("HasCapability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserCtx(t *testing.T) {
	id := primitive.NewObjectID()
	role, name, uid, ok := authz.UserCtx(reqWith(&auth.SessionUser{ID: id.Hex(), Name: "Officer One", Role: "Police"}))
	if !ok || role != "police" || name != "Officer One" || uid != id {
		t.Errorf("UserCtx() = %q %q %v %v", role, name, uid, ok)
	}

	role, _, _, ok = authz.UserCtx(reqWith(&auth.SessionUser{ID: "bad", Role: "admin"}))
	if ok || role != "visitor" {
		t.Errorf("malformed id should fail closed, got %q %v", role, ok)
	}

	if _, _, _, ok := authz.UserCtx(reqWith(nil)); ok {
		t.Error("no user should return ok=false")
	}
}

func TestRolePredicates(t *testing.T) {
	admin := reqWith(&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "admin"})
	police := reqWith(&auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "police"})

	if !authz.IsAdmin(admin) || authz.IsAdmin(police) {
		t.Error("IsAdmin mismatch")
	}
	if !authz.IsPolice(police) || authz.IsPolice(admin) {
		t.Error("IsPolice mismatch")
	}
	if !authz.HasAnyRole(police, "admin", "police") {
		t.Error("HasAnyRole should match police")
	}
	if role, ok := authz.Role(admin); !ok || role != "admin" {
		t.Errorf("Role() = %q %v", role, ok)
	}
}

func TestRequireCapability(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"police denied", &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "police"}, http.StatusForbidden},
		{"police granted", &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "police", Permissions: []string{"reports_read"}}, http.StatusOK},
		{"admin", &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "admin"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			authz.RequireCapability("reports_read")(next).ServeHTTP(rec, reqWith(tt.user))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
