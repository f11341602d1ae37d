// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's role (lowercased), name, ObjectID and a found
// flag. A missing user or a malformed id yields "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the caller is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsPolice reports whether the caller is a police officer.
func IsPolice(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RolePolice
}

// HasCapability is the capability rule: admins hold every capability;
// everyone else needs the tag itself or "all". An empty capability only
// requires an authenticated caller.
func HasCapability(role string, permissions []string, capability string) bool {
	if capability == "" || strings.EqualFold(role, models.RoleAdmin) {
		return true
	}
	for _, p := range permissions {
		if p == capability || p == models.PermAll {
			return true
		}
	}
	return false
}

// Can reports whether the caller holds capability.
func Can(r *http.Request, capability string) bool {
	u, ok := auth.CurrentUser(r)
	return ok && HasCapability(u.Role, u.Permissions, capability)
}

// RequireCapability admits callers holding capability. It must run after
// auth.RequireAuth.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.CurrentUser(r); !ok {
				apierr.Write(w, nil, apierr.ErrUnauthenticated)
				return
			}
			if !Can(r, capability) {
				apierr.Write(w, nil, apierr.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
