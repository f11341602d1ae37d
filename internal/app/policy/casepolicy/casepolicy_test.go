package casepolicy_test

import (
	"testing"

	"github.com/dalemusser/crms/internal/app/policy/casepolicy"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanAccess(t *testing.T) {
	officer := primitive.NewObjectID()
	c := &models.Case{AssignedOfficer: officer}

	tests := []struct {
		name  string
		actor casepolicy.Actor
		want  bool
	}{
		{"admin", casepolicy.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}, true},
		{"assigned officer", casepolicy.Actor{ID: officer, Role: models.RolePolice}, true},
		{"other officer", casepolicy.Actor{ID: primitive.NewObjectID(), Role: models.RolePolice}, false},
		{"unknown role", casepolicy.Actor{ID: officer, Role: "guest"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := casepolicy.CanAccess(tc.actor, c); got != tc.want {
				t.Errorf("CanAccess = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScope(t *testing.T) {
	admin := casepolicy.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	if casepolicy.Scope(admin) != nil {
		t.Error("admin listings must not be scoped")
	}
	police := casepolicy.Actor{ID: primitive.NewObjectID(), Role: models.RolePolice}
	if s := casepolicy.Scope(police); s == nil || *s != police.ID {
		t.Errorf("police scope = %v, want own id", s)
	}
}

func TestVisibleNotes(t *testing.T) {
	author := primitive.NewObjectID()
	notes := []models.Note{
		{ID: "1", Content: "public", AddedBy: primitive.NewObjectID()},
		{ID: "2", Content: "mine", AddedBy: author, IsPrivate: true},
		{ID: "3", Content: "theirs", AddedBy: primitive.NewObjectID(), IsPrivate: true},
	}

	got := casepolicy.VisibleNotes(casepolicy.Actor{ID: author, Role: models.RolePolice}, notes)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("police sees %v", got)
	}

	got = casepolicy.VisibleNotes(casepolicy.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}, notes)
	if len(got) != 3 {
		t.Errorf("admin sees %d notes, want 3", len(got))
	}
}

func TestCanDelete(t *testing.T) {
	if !casepolicy.CanDelete(casepolicy.Actor{Role: models.RoleAdmin}) {
		t.Error("admin should be able to delete")
	}
	if casepolicy.CanDelete(casepolicy.Actor{Role: models.RolePolice, Permissions: []string{models.PermCasesWrite}}) {
		t.Error("police without cases_delete should not delete")
	}
	if !casepolicy.CanDelete(casepolicy.Actor{Role: models.RolePolice, Permissions: []string{models.PermCasesDelete}}) {
		t.Error("police with cases_delete should delete")
	}
}

func TestActorFromSession(t *testing.T) {
	id := primitive.NewObjectID()
	a, ok := casepolicy.ActorFromSession(&auth.SessionUser{ID: id.Hex(), Role: models.RolePolice})
	if !ok || a.ID != id || a.Role != models.RolePolice {
		t.Errorf("ActorFromSession = (%+v, %v)", a, ok)
	}
	if _, ok := casepolicy.ActorFromSession(&auth.SessionUser{ID: "nope"}); ok {
		t.Error("invalid id should fail")
	}
	if _, ok := casepolicy.ActorFromSession(nil); ok {
		t.Error("nil session should fail")
	}
}
