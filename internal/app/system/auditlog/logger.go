// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls authentication events (login, logout, password).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls user, station and case administration events. Same values as Auth.
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
// A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

/* ----------------------------- request source ----------------------------- */

type source struct {
	IP        string
	UserAgent string
}

type ctxKey struct{}

// CaptureRequest stores the client address and user agent in the request
// context so events logged deeper in the call chain can carry them.
func CaptureRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKey{}, source{
			IP:        ratelimit.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sourceFrom(ctx context.Context) source {
	s, _ := ctx.Value(ctxKey{}).(source)
	return s
}

/* ---------------------------------- core ---------------------------------- */

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin, audit.CategoryCase:
		return l.config.Admin
	}
	return "all"
}

// Log records event according to the configured destination for its
// category. Missing IP and user agent are filled from the context.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == "off" {
		return
	}

	src := sourceFrom(ctx)
	if event.IP == "" {
		event.IP = src.IP
	}
	if event.UserAgent == "" {
		event.UserAgent = src.UserAgent
	}

	if (setting == "all" || setting == "log") && l.zapLog != nil {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

/* ------------------------- authentication events -------------------------- */

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, userID primitive.ObjectID, username, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"username": username, "role": role},
	})
}

// LoginFailed logs a rejected login. userID is nil when no account matched.
func (l *Logger) LoginFailed(ctx context.Context, eventType string, userID *primitive.ObjectID, username, role, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"username": username, "role": role},
	})
}

// AccountLocked logs the failure that put an account into lockout.
func (l *Logger) AccountLocked(ctx context.Context, userID primitive.ObjectID, until time.Time) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventAccountLocked,
		UserID:        &userID,
		Success:       false,
		FailureReason: "too many failed attempts",
		Details:       map[string]string{"lock_until": until.UTC().Format(time.RFC3339)},
	})
}

// Logout logs a token revocation.
func (l *Logger) Logout(ctx context.Context, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    &userID,
		Success:   true,
	})
}

// PasswordChanged logs a self-service password change.
func (l *Logger) PasswordChanged(ctx context.Context, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		UserID:    &userID,
		Success:   true,
	})
}

/* ------------------------------ admin events ------------------------------ */

func (l *Logger) admin(ctx context.Context, eventType string, actorID primitive.ObjectID, userID *primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		UserID:    userID,
		Success:   true,
		Details:   details,
	})
}

// UserCreated logs creation of an account by an admin.
func (l *Logger) UserCreated(ctx context.Context, actorID, userID primitive.ObjectID, username, role string) {
	l.admin(ctx, audit.EventUserCreated, actorID, &userID, map[string]string{"username": username, "role": role})
}

// UserUpdated logs an admin edit. fields names what changed.
func (l *Logger) UserUpdated(ctx context.Context, actorID, userID primitive.ObjectID, fields string) {
	l.admin(ctx, audit.EventUserUpdated, actorID, &userID, map[string]string{"fields": fields})
}

// UserDeleted logs removal of an account.
func (l *Logger) UserDeleted(ctx context.Context, actorID, userID primitive.ObjectID, username string) {
	l.admin(ctx, audit.EventUserDeleted, actorID, &userID, map[string]string{"username": username})
}

// UserUnlocked logs an admin clearing a lockout.
func (l *Logger) UserUnlocked(ctx context.Context, actorID, userID primitive.ObjectID) {
	l.admin(ctx, audit.EventUserUnlocked, actorID, &userID, nil)
}

// PasswordReset logs an admin setting another user's password.
func (l *Logger) PasswordReset(ctx context.Context, actorID, userID primitive.ObjectID) {
	l.admin(ctx, audit.EventPasswordReset, actorID, &userID, nil)
}

// StationChanged logs a station create, update or delete.
func (l *Logger) StationChanged(ctx context.Context, eventType string, actorID primitive.ObjectID, stationCode string) {
	l.admin(ctx, eventType, actorID, nil, map[string]string{"station_code": stationCode})
}

/* ------------------------------- case events ------------------------------ */

// CaseEvent logs a case lifecycle event (create, delete, update conflict).
func (l *Logger) CaseEvent(ctx context.Context, eventType string, actorID primitive.ObjectID, caseID string, success bool) {
	ev := audit.Event{
		Category:  audit.CategoryCase,
		EventType: eventType,
		ActorID:   &actorID,
		Success:   success,
		Details:   map[string]string{"case_id": caseID},
	}
	if !success {
		ev.FailureReason = "version conflict"
	}
	l.Log(ctx, ev)
}
