// internal/app/policy/casepolicy/casepolicy.go
package casepolicy

import (
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the caller of a case operation.
type Actor struct {
	ID          primitive.ObjectID
	Role        string
	Permissions []string
}

// ActorFromSession converts the request identity. ok is false when the
// session id is not a valid ObjectID.
func ActorFromSession(u *auth.SessionUser) (Actor, bool) {
	if u == nil {
		return Actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: u.Role, Permissions: u.Permissions}, true
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CanAccess reports whether a may read or modify c:
// - admins always can
// - police only when they are the assigned officer
func CanAccess(a Actor, c *models.Case) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == models.RolePolice && c.AssignedOfficer == a.ID
}

// Scope is the assigned-officer restriction for listings: nil for admins,
// the caller's own id for police.
func Scope(a Actor) *primitive.ObjectID {
	if a.IsAdmin() {
		return nil
	}
	id := a.ID
	return &id
}

// CanSeeNote reports whether a private note is visible to a.
func CanSeeNote(a Actor, n models.Note) bool {
	return !n.IsPrivate || a.IsAdmin() || n.AddedBy == a.ID
}

// VisibleNotes filters notes down to the ones a may read, keeping order.
func VisibleNotes(a Actor, notes []models.Note) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if CanSeeNote(a, n) {
			out = append(out, n)
		}
	}
	return out
}

// CanDelete reports whether a holds the case deletion capability.
func CanDelete(a Actor) bool {
	return authz.HasCapability(a.Role, a.Permissions, models.PermCasesDelete)
}
