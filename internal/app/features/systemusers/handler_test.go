package systemusers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/crms/internal/app/features/systemusers"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/indexes"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/dalemusser/crms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	router   http.Handler
	tokens   *testutil.Authorizer
	fixtures *testutil.Fixtures
	db       *mongo.Database
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	logger := zap.NewNop()
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-for-hs256", 24*time.Hour)
	a := authn.New(userstore.New(db), tm, nil, nil, logger, authn.Config{BcryptCost: bcrypt.MinCost})
	tokens := testutil.NewAuthorizer()
	h := systemusers.NewHandler(db, a, nil, logger)
	return &env{
		router:   systemusers.Routes(h, auth.NewMiddleware(tokens, logger)),
		tokens:   tokens,
		fixtures: testutil.NewFixtures(t, db),
		db:       db,
	}
}

func (e *env) do(t *testing.T, method, target string, body any, u models.User) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.WithBearer(testutil.NewJSONRequest(t, method, target, body), e.tokens.Token(u))
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) user(t *testing.T, u models.User) *models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := userstore.New(e.db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return got
}

func TestHandleCreate_Success(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	e.fixtures.CreateStation(ctx, "PS001", "Central")

	rec := e.do(t, "POST", "/", map[string]any{
		"username":    "officer7",
		"password":    "police123",
		"role":        "Police",
		"fullName":    " Kim  Park ",
		"email":       "Kim.Park@Example.com",
		"badgeNumber": "B-77",
		"station":     "ps001",
		"permissions": []string{"cases_read", "cases_write", "cases_read"},
	}, admin)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "User created successfully")
	rec.AssertNotContains(t, "password")

	var stored models.User
	if err := e.db.Collection("users").FindOne(ctx, bson.M{"username": "officer7"}).Decode(&stored); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if stored.Role != models.RolePolice || stored.FullName != "Kim Park" || stored.Email != "kim.park@example.com" {
		t.Errorf("stored = %q %q %q", stored.Role, stored.FullName, stored.Email)
	}
	if stored.Station != "PS001" || stored.Status != models.StatusActive {
		t.Errorf("station/status = %q/%q", stored.Station, stored.Status)
	}
	if len(stored.Permissions) != 2 {
		t.Errorf("permissions = %v, want 2 unique tags", stored.Permissions)
	}
	if stored.CreatedBy == nil || *stored.CreatedBy != admin.ID {
		t.Errorf("createdBy = %v, want %v", stored.CreatedBy, admin.ID)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("police123")) != nil {
		t.Error("password hash does not match")
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"short password", map[string]any{"username": "u1", "password": "123", "role": "police", "fullName": "U", "email": "u1@x.com"}, `"password"`},
		{"bad role", map[string]any{"username": "u1", "password": "secret1", "role": "chief", "fullName": "U", "email": "u1@x.com"}, `"role"`},
		{"bad email", map[string]any{"username": "u1", "password": "secret1", "role": "police", "fullName": "U", "email": "nope"}, `"email"`},
		{"unknown permission", map[string]any{"username": "u1", "password": "secret1", "role": "police", "fullName": "U", "email": "u1@x.com", "permissions": []string{"root"}}, `"permissions"`},
		{"unknown station", map[string]any{"username": "u1", "password": "secret1", "role": "police", "fullName": "U", "email": "u1@x.com", "station": "PS404"}, `"station"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, "POST", "/", tt.body, admin)
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.field)
		})
	}
}

func TestHandleCreate_Duplicates(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	existing := e.fixtures.CreateOfficer(ctx, "officer1")

	rec := e.do(t, "POST", "/", map[string]any{
		"username": "officer1", "password": "secret1", "role": "police",
		"fullName": "Dup", "email": "fresh@example.com",
	}, admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "username already exists")

	rec = e.do(t, "POST", "/", map[string]any{
		"username": "officer9", "password": "secret1", "role": "police",
		"fullName": "Dup", "email": existing.Email,
	}, admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "email already exists")

	// Same username under the other role is a different account.
	rec = e.do(t, "POST", "/", map[string]any{
		"username": "officer1", "password": "secret1", "role": "admin",
		"fullName": "Other", "email": "other@example.com",
	}, admin)
	rec.AssertStatus(t, http.StatusCreated)
}

func TestCapabilities(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	officer := e.fixtures.CreateOfficer(ctx, "officer1")
	reader := e.fixtures.CreateUser(ctx, "reader", models.RolePolice, "police123", models.PermUsersRead)

	e.do(t, "GET", "/", nil, officer).AssertStatus(t, http.StatusForbidden)
	e.do(t, "GET", "/", nil, reader).AssertStatus(t, http.StatusOK)
	e.do(t, "POST", "/", map[string]any{}, reader).AssertStatus(t, http.StatusForbidden)
	e.do(t, "DELETE", "/"+officer.ID.Hex(), nil, reader).AssertStatus(t, http.StatusForbidden)

	// The officer picker only needs a signed-in admin or police user.
	e.do(t, "GET", "/officers", nil, officer).AssertStatus(t, http.StatusOK)
}

func TestServeList_FiltersAndPaging(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	for _, name := range []string{"officer1", "officer2", "officer3"} {
		e.fixtures.CreateOfficer(ctx, name)
	}

	var out struct {
		Data []struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"data"`
		Pagination struct {
			TotalItems int64 `json:"totalItems"`
			HasNext    bool  `json:"hasNext"`
		} `json:"pagination"`
	}
	rec := e.do(t, "GET", "/?role=police&limit=2&sortBy=username&sortOrder=asc", nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.Decode(t, &out)
	if out.Pagination.TotalItems != 3 || !out.Pagination.HasNext {
		t.Errorf("pagination = %+v", out.Pagination)
	}
	if len(out.Data) != 2 || out.Data[0].Username != "officer1" {
		t.Errorf("data = %+v", out.Data)
	}

	rec = e.do(t, "GET", "/?search=officer3", nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.Decode(t, &out)
	if len(out.Data) != 1 || out.Data[0].Username != "officer3" {
		t.Errorf("search data = %+v", out.Data)
	}
}

func TestServeOfficers_OnlyActivePolice(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	e.fixtures.CreateOfficer(ctx, "officer1")
	gone := e.fixtures.CreateOfficer(ctx, "officer2")
	e.fixtures.SetUserStatus(ctx, gone.ID, models.StatusInactive)

	rec := e.do(t, "GET", "/officers", nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "officer1")
	rec.AssertNotContains(t, "officer2")
	rec.AssertNotContains(t, `"username":"admin"`)
}

func TestServeUser(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	officer := e.fixtures.CreateOfficer(ctx, "officer1")

	rec := e.do(t, "GET", "/"+officer.ID.Hex(), nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"isLocked":false`)
	rec.AssertNotContains(t, "password")

	e.do(t, "GET", "/not-an-id", nil, admin).AssertStatus(t, http.StatusNotFound)
}

func TestHandleUpdate(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	officer := e.fixtures.CreateOfficer(ctx, "officer1")

	rec := e.do(t, "PUT", "/"+officer.ID.Hex(), map[string]any{
		"department":  "Homicide",
		"status":      "suspended",
		"permissions": []string{"cases_read"},
	}, admin)
	rec.AssertStatus(t, http.StatusOK)

	got := e.user(t, officer)
	if got.Department != "Homicide" || got.Status != models.StatusSuspended {
		t.Errorf("department/status = %q/%q", got.Department, got.Status)
	}
	if len(got.Permissions) != 1 || got.Permissions[0] != models.PermCasesRead {
		t.Errorf("permissions = %v", got.Permissions)
	}
	if got.PasswordHash != officer.PasswordHash {
		t.Error("password hash changed")
	}
}

func TestHandleUpdate_RefusesPasswordAndRole(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	officer := e.fixtures.CreateOfficer(ctx, "officer1")

	rec := e.do(t, "PUT", "/"+officer.ID.Hex(), map[string]any{"password": "newpass1"}, admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"password"`)

	rec = e.do(t, "PUT", "/"+officer.ID.Hex(), map[string]any{"role": "admin"}, admin)
	rec.AssertStatus(t, http.StatusBadRequest)

	if got := e.user(t, officer); got.Role != models.RolePolice || got.PasswordHash != officer.PasswordHash {
		t.Error("refused update modified the account")
	}
}

func TestHandleUpdate_LastActiveAdmin(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	other := e.fixtures.CreateAdmin(ctx, "admin2")

	// Own status cannot be changed.
	rec := e.do(t, "PUT", "/"+admin.ID.Hex(), map[string]any{"status": "inactive"}, admin)
	rec.AssertStatus(t, http.StatusBadRequest)

	// With two active admins one may be deactivated...
	rec = e.do(t, "PUT", "/"+other.ID.Hex(), map[string]any{"status": "inactive"}, admin)
	rec.AssertStatus(t, http.StatusOK)

	// ...but not the last one.
	reader := e.fixtures.CreateUser(ctx, "manager", models.RolePolice, "police123", models.PermUsersWrite)
	rec = e.do(t, "PUT", "/"+admin.ID.Hex(), map[string]any{"status": "inactive"}, reader)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "at least one active admin")
}

func TestHandleDelete_Guards(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	officer := e.fixtures.CreateOfficer(ctx, "officer1")
	e.fixtures.CreateCase(ctx, "CASE20260001", officer)

	rec := e.do(t, "DELETE", "/"+admin.ID.Hex(), nil, admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Cannot delete your own account")

	rec = e.do(t, "DELETE", "/"+officer.ID.Hex(), nil, admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"assignedOfficer"`)

	if _, err := e.db.Collection("cases").UpdateOne(ctx, bson.M{"case_id": "CASE20260001"},
		bson.M{"$set": bson.M{"status": models.CaseStatusSolved}}); err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	rec = e.do(t, "DELETE", "/"+officer.ID.Hex(), nil, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "User deleted successfully")

	e.do(t, "DELETE", "/"+officer.ID.Hex(), nil, admin).AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete_LastActiveAdmin(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	deleter := e.fixtures.CreateUser(ctx, "deleter", models.RolePolice, "police123", models.PermUsersDelete)

	rec := e.do(t, "DELETE", "/"+admin.ID.Hex(), nil, deleter)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "at least one active admin")
}

func TestHandleResetPassword(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	officer := e.fixtures.CreateOfficer(ctx, "officer1")

	rec := e.do(t, "PUT", "/"+officer.ID.Hex()+"/reset-password", map[string]any{"newPassword": "123"}, admin)
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(t, "PUT", "/"+officer.ID.Hex()+"/reset-password", map[string]any{"newPassword": "fresh-pass"}, admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Password reset successfully")

	got := e.user(t, officer)
	if bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("fresh-pass")) != nil {
		t.Error("new password not stored")
	}
}

func TestHandleUnlock(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin := e.fixtures.CreateAdmin(ctx, "admin")
	officer := e.fixtures.CreateOfficer(ctx, "officer1")

	until := time.Now().Add(time.Hour).UTC()
	if _, err := e.db.Collection("users").UpdateOne(ctx, bson.M{"_id": officer.ID},
		bson.M{"$set": bson.M{"login_attempts": 5, "lock_until": until}}); err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	e.do(t, "GET", "/"+officer.ID.Hex(), nil, admin).AssertContains(t, `"isLocked":true`)

	rec := e.do(t, "PUT", "/"+officer.ID.Hex()+"/unlock", nil, admin)
	rec.AssertStatus(t, http.StatusOK)

	got := e.user(t, officer)
	if got.LoginAttempts != 0 || got.LockUntil != nil {
		t.Errorf("attempts/lock = %d/%v", got.LoginAttempts, got.LockUntil)
	}
}
