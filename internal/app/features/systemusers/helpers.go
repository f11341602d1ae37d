// internal/app/features/systemusers/helpers.go
package systemusers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	stationstore "github.com/dalemusser/crms/internal/app/store/stations"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// userContext returns the caller's context (role, name, userID, ok).
// Authorization is done by the route middleware; this only reads identity.
func userContext(r *http.Request) (string, string, primitive.ObjectID, bool) {
	return authz.UserCtx(r)
}

// targetID parses the {id} URL parameter. A malformed id is reported as a
// missing user.
func targetID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.ErrUserNotFound
	}
	return id, nil
}

/*
countActiveAdmins returns the number of users with role=admin and status=active.

Callers pass in the DB and a context with an appropriate timeout.
*/
func countActiveAdmins(ctx context.Context, db *mongo.Database) (int64, error) {
	return userstore.New(db).Count(ctx, userstore.ListFilter{
		Role:   models.RoleAdmin,
		Status: models.StatusActive,
	})
}

// checkPermissions records every tag that is not a known capability.
func checkPermissions(perms []string, v *apierr.ValidationError) {
	for _, p := range perms {
		if !inputval.OneOf(p, models.Permissions) {
			v.Add("permissions", "Unknown permission "+p)
			return
		}
	}
}

// cleanPermissions trims and de-duplicates tags, keeping order.
func cleanPermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// checkStation fails validation when code names no station. Empty is allowed.
func checkStation(ctx context.Context, db *mongo.Database, code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	_, err := stationstore.New(db).GetByCode(ctx, code)
	if errors.Is(err, stationstore.ErrNotFound) {
		return apierr.Invalid("station", "Station not found")
	}
	return err
}

// mapStoreErr translates user store errors for the API.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		return apierr.ErrUserNotFound
	case errors.Is(err, userstore.ErrDuplicateUsername):
		return apierr.Duplicate("username")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return apierr.Duplicate("email")
	}
	return err
}
