// internal/app/features/systemusers/edit.go
package systemusers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	casestore "github.com/dalemusser/crms/internal/app/store/cases"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/formutil"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/limits"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/app/system/timeouts"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.uber.org/zap"
)

// validateUpdate normalizes in and returns the names of the fields it sets.
func validateUpdate(in *updateInput) ([]string, error) {
	var v apierr.ValidationError
	if in.Password != nil {
		v.Add("password", "Password cannot be changed here; use reset-password")
	}
	if in.Username != nil {
		v.Add("username", "Username cannot be changed")
	}
	if in.Role != nil {
		v.Add("role", "Role cannot be changed")
	}

	var fields []string
	if in.FullName != nil {
		if normalize.Name(*in.FullName) == "" {
			v.Add("fullName", "Full name cannot be empty")
		}
		fields = append(fields, "fullName")
	}
	if in.Email != nil {
		e := normalize.Email(*in.Email)
		in.Email = &e
		if !inputval.IsValidEmail(e) {
			v.Add("email", "A valid email is required")
		}
		fields = append(fields, "email")
	}
	if in.Phone != nil {
		fields = append(fields, "phone")
	}
	if in.BadgeNumber != nil {
		fields = append(fields, "badgeNumber")
	}
	if in.Department != nil {
		fields = append(fields, "department")
	}
	if in.Station != nil {
		fields = append(fields, "station")
	}
	if in.Status != nil {
		s := normalize.Status(*in.Status)
		in.Status = &s
		if !inputval.OneOf(s, models.Statuses) {
			v.Add("status", "Invalid status")
		}
		fields = append(fields, "status")
	}
	if in.Permissions != nil {
		p := cleanPermissions(*in.Permissions)
		in.Permissions = &p
		checkPermissions(p, &v)
		fields = append(fields, "permissions")
	}
	return fields, v.Err()
}

// HandleUpdate handles PUT /api/users/{id}. Passwords go through
// HandleResetPassword.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, who, ok := userContext(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}
	uid, err := targetID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	var in updateInput
	if !formutil.Decode(w, r, limits.MaxAdminBodySize, &in) {
		return
	}
	fields, err := validateUpdate(&in)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	current, err := users.GetByID(ctx, uid)
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}

	deactivating := in.Status != nil && *in.Status != models.StatusActive
	if deactivating && who == uid {
		apierr.Write(w, h.Log, apierr.Invalid("status", "You can't change your own status"))
		return
	}
	// There must always be an active admin left to administer the system.
	if deactivating && current.Role == models.RoleAdmin && current.Status == models.StatusActive {
		cnt, err := countActiveAdmins(ctx, h.DB)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if cnt <= 1 {
			apierr.Write(w, h.Log, apierr.Invalid("status", "There must be at least one active admin in the system"))
			return
		}
	}

	if in.Station != nil {
		if err := checkStation(ctx, h.DB, *in.Station); err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
	}
	if in.Email != nil {
		taken, err := users.EmailExistsForOther(ctx, *in.Email, uid)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if taken {
			apierr.Write(w, h.Log, apierr.Duplicate("email"))
			return
		}
	}

	u, err := users.Update(ctx, uid, userstore.Update{
		FullName:    in.FullName,
		Email:       in.Email,
		Phone:       in.Phone,
		BadgeNumber: in.BadgeNumber,
		Department:  in.Department,
		Station:     in.Station,
		Status:      in.Status,
		Permissions: in.Permissions,
	})
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if len(fields) > 0 {
		h.AuditLog.UserUpdated(ctx, who, uid, strings.Join(fields, ","))
	}
	apierr.OK(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"data":    newUserView(u, time.Now()),
	})
}

// HandleDelete handles DELETE /api/users/{id}, enforcing safety guards:
// not yourself, not the last active admin, not an officer with open cases.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, who, ok := userContext(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.ErrUnauthenticated)
		return
	}
	uid, err := targetID(r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if who == uid {
		apierr.WriteMessage(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	u, err := users.GetByID(ctx, uid)
	if err != nil {
		apierr.Write(w, h.Log, mapStoreErr(err))
		return
	}

	if u.Role == models.RoleAdmin && u.Status == models.StatusActive {
		cnt, err := countActiveAdmins(ctx, h.DB)
		if err != nil {
			apierr.Write(w, h.Log, err)
			return
		}
		if cnt <= 1 {
			apierr.WriteMessage(w, http.StatusBadRequest, "There must be at least one active admin in the system")
			return
		}
	}

	open, err := casestore.New(h.DB).CountOpenAssigned(ctx, uid)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if open > 0 {
		apierr.Write(w, h.Log, apierr.Invalid("assignedOfficer",
			fmt.Sprintf("User is assigned to %d open case(s); reassign them first", open)))
		return
	}

	n, err := users.Delete(ctx, uid)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if n == 0 {
		apierr.Write(w, h.Log, apierr.ErrUserNotFound)
		return
	}

	if err := h.Auth.RevokeAll(ctx, uid); err != nil {
		// The account is gone, so its tokens already fail authorization.
		h.Log.Warn("revoke tokens of deleted user", zap.String("user_id", uid.Hex()), zap.Error(err))
	}
	h.AuditLog.UserDeleted(ctx, who, uid, u.Username)

	apierr.OK(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}
