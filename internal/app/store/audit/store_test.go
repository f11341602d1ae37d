package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log_DefaultsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	before := time.Now().UTC().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
		Details:   map[string]string{"role": "police"},
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if ev.Timestamp.Before(before) {
		t.Errorf("timestamp %v not set to now", ev.Timestamp)
	}
	if ev.Details["role"] != "police" {
		t.Errorf("Details = %v", ev.Details)
	}
}

func TestStore_Query_UserMatchesActorOrSubject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := primitive.NewObjectID()
	officer := primitive.NewObjectID()

	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventUserCreated, ActorID: &admin, UserID: &officer, Success: true})
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &officer, Success: true})
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &admin, Success: true})

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &officer})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("officer events = %d, want 2", len(events))
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{UserID: &admin})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("admin events = %d, want 2", n)
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Timestamp: now.Add(-2 * time.Hour), Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: now, Success: true},
		{Category: audit.CategoryCase, EventType: audit.EventCaseDeleted, Timestamp: now, Success: true},
	}
	for _, ev := range events {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 3},
		{"category", audit.QueryFilter{Category: audit.CategoryAuth}, 2},
		{"event type", audit.QueryFilter{EventType: audit.EventCaseDeleted}, 1},
		{"since", audit.QueryFilter{StartTime: ptr(now.Add(-time.Hour))}, 2},
		{"until", audit.QueryFilter{EndTime: ptr(now.Add(-time.Hour))}, 1},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
		{"offset", audit.QueryFilter{Offset: 2}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Query(ctx, tc.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("got %d events, want %d", len(got), tc.want)
			}
		})
	}
}

func TestStore_Query_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: now.Add(-time.Minute)})
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Timestamp: now})

	got, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 || got[0].EventType != audit.EventLoginSuccess {
		t.Errorf("order = %v", got)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, et := range audit.FailedLoginEvents {
		_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: et, Success: false})
	}
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true})

	got, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Hour), 100)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(got) != len(audit.FailedLoginEvents) {
		t.Errorf("got %d failed logins, want %d", len(got), len(audit.FailedLoginEvents))
	}

	none, _ := store.GetFailedLogins(ctx, time.Now().Add(time.Hour), 100)
	if len(none) != 0 {
		t.Errorf("future window returned %d events", len(none))
	}
}

func ptr(t time.Time) *time.Time { return &t }
