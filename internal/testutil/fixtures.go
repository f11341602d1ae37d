package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/crms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx, _ := ctx.Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// HashPassword hashes pw at the minimum bcrypt cost so tests stay fast.
func HashPassword(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

// CreateUser inserts an active user with the given identity and password.
func (f *Fixtures) CreateUser(ctx context.Context, username, role, password string, perms ...string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	name := "Test " + username
	if perms == nil {
		perms = []string{}
	}
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: HashPassword(f.t, password),
		Role:         role,
		FullName:     name,
		FullNameCI:   text.Fold(name),
		Email:        fmt.Sprintf("%s.%s@crms.test", username, role),
		BadgeNumber:  "B-" + username,
		Department:   "Criminal Investigation",
		Status:       models.StatusActive,
		Permissions:  perms,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates an admin holding every capability.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RoleAdmin, "admin123", models.PermAll)
}

// CreateOfficer creates an active police user with read/write on cases.
func (f *Fixtures) CreateOfficer(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, models.RolePolice, "police123", models.PermCasesRead, models.PermCasesWrite)
}

// SetUserStatus changes a user's status directly.
func (f *Fixtures) SetUserStatus(ctx context.Context, id primitive.ObjectID, status string) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		f.t.Fatalf("failed to set user status: %v", err)
	}
}

// NewCase returns an unsaved pending case assigned to officer.
func NewCase(caseID string, officer models.User) models.Case {
	now := time.Now().UTC().Truncate(time.Millisecond)
	age := 30
	return models.Case{
		ID:           primitive.NewObjectID(),
		CaseID:       caseID,
		Title:        "Burglary at 12 Elm St",
		Type:         "burglary",
		Status:       models.CaseStatusPending,
		Priority:     models.PriorityMedium,
		IncidentDate: now.Add(-48 * time.Hour),
		ReportedDate: now.Add(-24 * time.Hour),
		Location: models.Location{
			Address: "12 Elm St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
			Coordinates: &models.Coordinates{
				Latitude:  39.7817,
				Longitude: -89.6501,
			},
		},
		Description: "Rear window forced, electronics taken.",
		Complainant: models.Complainant{
			Name:         "Jane Doe",
			Phone:        "555-0100",
			Email:        "jane@example.com",
			Relationship: "victim",
		},
		AssignedOfficer:     officer.ID,
		AssignedOfficerName: officer.FullName,
		Department:          officer.Department,
		Suspects: []models.Suspect{
			{Name: "Unknown male", Age: &age, Gender: "male", Status: "unknown"},
		},
		Witnesses:    []models.Witness{},
		Evidence:     []models.Evidence{},
		RelatedCases: []string{},
		Tags:         []string{"residential"},
		Notes:        []models.Note{},
		UpdateLog:    []models.UpdateLogEntry{},
		CreatedBy:    officer.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// CreateCase inserts NewCase(caseID, officer).
func (f *Fixtures) CreateCase(ctx context.Context, caseID string, officer models.User) models.Case {
	f.t.Helper()
	c := NewCase(caseID, officer)
	if _, err := f.db.Collection("cases").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test case: %v", err)
	}
	return c
}

// CreateStation inserts a station with the given code.
func (f *Fixtures) CreateStation(ctx context.Context, code, name string) models.Station {
	f.t.Helper()

	now := time.Now().UTC()
	st := models.Station{
		ID:          primitive.NewObjectID(),
		StationCode: code,
		StationName: name,
		NameCI:      text.Fold(name),
		Address:     models.StationAddress{City: "Springfield", State: "IL"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("stations").InsertOne(ctx, st); err != nil {
		f.t.Fatalf("failed to create test station: %v", err)
	}
	return st
}
