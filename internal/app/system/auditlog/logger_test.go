package auditlog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx := context.Background()

	// All of these must be no-ops.
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, primitive.NewObjectID(), "officer1", "police")
	logger.Logout(ctx, primitive.NewObjectID())
	logger.CaseEvent(ctx, audit.EventCaseDeleted, primitive.NewObjectID(), "CASE20260001", true)
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
		wantZap int
	}{
		{"all", 1, 1},
		{"db", 1, 0},
		{"log", 0, 1},
		{"off", 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.setting, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			core, logs := observer.New(zap.InfoLevel)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.New(core), auditlog.Config{Auth: tc.setting, Admin: tc.setting})
			userID := primitive.NewObjectID()
			logger.LoginSuccess(ctx, userID, "officer1", "police")

			events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID})
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(events) != tc.wantDB {
				t.Errorf("db events = %d, want %d", len(events), tc.wantDB)
			}
			if logs.Len() != tc.wantZap {
				t.Errorf("zap entries = %d, want %d", logs.Len(), tc.wantZap)
			}
		})
	}
}

func TestLogger_CaseEventsFollowAdminSetting(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log", Admin: "off"})

	logger.CaseEvent(context.Background(), audit.EventCaseDeleted, primitive.NewObjectID(), "CASE20260001", true)
	if logs.Len() != 0 {
		t.Errorf("case event logged with admin=off")
	}

	logger.PasswordChanged(context.Background(), primitive.NewObjectID())
	if logs.Len() != 1 {
		t.Errorf("auth event not logged with auth=log")
	}
}

func TestLogger_FailuresLogAtWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log", Admin: "log"})

	uid := primitive.NewObjectID()
	logger.LoginFailed(context.Background(), audit.EventLoginFailedWrongPassword, &uid, "officer1", "police", "wrong password")
	logger.AccountLocked(context.Background(), uid, time.Now().Add(2*time.Hour))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Level != zap.WarnLevel {
			t.Errorf("%s logged at %s, want warn", e.ContextMap()["event_type"], e.Level)
		}
	}
	if got := entries[0].ContextMap()["failure_reason"]; got != "wrong password" {
		t.Errorf("failure_reason = %v", got)
	}
}

func TestCaptureRequest_FillsSource(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log", Admin: "log"})

	h := auditlog.CaptureRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Logout(r.Context(), primitive.NewObjectID())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if logs.Len() != 1 {
		t.Fatalf("entries = %d, want 1", logs.Len())
	}
	if ip := logs.All()[0].ContextMap()["ip"]; ip != "203.0.113.9" {
		t.Errorf("ip = %v, want 203.0.113.9", ip)
	}
}
