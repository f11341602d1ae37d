// Package authn verifies credentials, enforces account lockout and resolves
// session tokens back to live accounts.
package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/store/audit"
	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/dalemusser/crms/internal/app/system/auditlog"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/system/authz"
	"github.com/dalemusser/crms/internal/app/system/inputval"
	"github.com/dalemusser/crms/internal/app/system/normalize"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Defaults for Config fields left zero.
const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 2 * time.Hour
	DefaultBcryptCost       = 12
)

// UserStore is the credential store the workflow needs.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsernameAndRole(ctx context.Context, username, role string) (*models.User, error)
	IncrementLoginAttempts(ctx context.Context, id primitive.ObjectID, now time.Time, threshold int, lockFor time.Duration) (models.LoginState, error)
	ClearLoginAttempts(ctx context.Context, id primitive.ObjectID, lastLogin *time.Time) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// Revoker records revoked tokens. A nil Revoker disables logout revocation.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeUserBefore(ctx context.Context, userID string, at time.Time, ttl time.Duration) error
	RevokedBefore(ctx context.Context, userID string) (time.Time, bool, error)
}

type Config struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	BcryptCost       int
}

func (c Config) withDefaults() Config {
	if c.LockoutThreshold <= 0 {
		c.LockoutThreshold = DefaultLockoutThreshold
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = DefaultLockoutDuration
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	return c
}

// Authenticator implements login, token authorization, logout and password
// changes. It is safe for concurrent use; all account state lives in the store.
type Authenticator struct {
	users   UserStore
	tokens  *auth.TokenManager
	revoker Revoker
	audit   *auditlog.Logger
	log     *zap.Logger
	cfg     Config
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// New wires an Authenticator. revoker and audit may be nil.
func New(users UserStore, tokens *auth.TokenManager, revoker Revoker, audit *auditlog.Logger, logger *zap.Logger, cfg Config) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		audit:   audit,
		log:     logger,
		cfg:     cfg.withDefaults(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Tests use it to step through lockout.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

// Config returns the effective settings.
func (a *Authenticator) Config() Config { return a.cfg }

// Result is a successful login.
type Result struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      models.Profile `json:"user"`
}

// Authenticate checks (username, password, role) and issues a session token.
//
// Order of checks: unknown account, active lock, inactive status, password.
// A wrong password bumps the failure counter atomically and may start a
// lock; a correct one clears counter and lock and records lastLogin.
func (a *Authenticator) Authenticate(ctx context.Context, username, password, role string) (*Result, error) {
	username = normalize.Username(username)
	role = normalize.Role(role)

	var v apierr.ValidationError
	if username == "" {
		v.Add("username", "Username is required")
	}
	if password == "" {
		v.Add("password", "Password is required")
	}
	if !inputval.OneOf(role, models.Roles) {
		v.Add("role", "Role must be admin or police")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	u, err := a.users.GetByUsernameAndRole(ctx, username, role)
	if errors.Is(err, userstore.ErrNotFound) {
		// Spend the same bcrypt time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(a.dummy(), []byte(password))
		a.audit.LoginFailed(ctx, audit.EventLoginFailedUserNotFound, nil, username, role, "user not found")
		return nil, apierr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := a.now()
	if u.IsLocked(now) {
		a.audit.LoginFailed(ctx, audit.EventLoginFailedAccountLocked, &u.ID, username, role, "account locked")
		return nil, apierr.ErrAccountLocked
	}
	if u.Status != models.StatusActive {
		a.audit.LoginFailed(ctx, audit.EventLoginFailedInactive, &u.ID, username, role, "account "+u.Status)
		return nil, apierr.ErrAccountInactive
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		st, err := a.users.IncrementLoginAttempts(ctx, u.ID, now, a.cfg.LockoutThreshold, a.cfg.LockoutDuration)
		if err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		a.audit.LoginFailed(ctx, audit.EventLoginFailedWrongPassword, &u.ID, username, role, "wrong password")
		if st.Locked(now) && st.LoginAttempts == a.cfg.LockoutThreshold {
			a.audit.AccountLocked(ctx, u.ID, *st.LockUntil)
			a.log.Warn("account locked",
				zap.String("user_id", u.ID.Hex()),
				zap.Time("lock_until", *st.LockUntil))
		}
		return nil, apierr.ErrInvalidCredentials
	}

	if err := a.users.ClearLoginAttempts(ctx, u.ID, &now); err != nil {
		return nil, fmt.Errorf("clear login attempts: %w", err)
	}
	u.LastLogin = &now
	u.LoginAttempts = 0
	u.LockUntil = nil

	token, claims, err := a.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	a.audit.LoginSuccess(ctx, u.ID, username, role)

	return &Result{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      u.Profile(),
	}, nil
}

func (a *Authenticator) dummy() []byte {
	a.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("crms-timing-equalizer"), a.cfg.BcryptCost)
		if err != nil {
			a.log.Warn("dummy hash generation failed", zap.Error(err))
		}
		a.dummyHash = h
	})
	return a.dummyHash
}

// Authorize resolves token to an active account holding capability. An
// empty capability admits any active account.
func (a *Authenticator) Authorize(ctx context.Context, token, capability string) (*models.User, *auth.Claims, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, nil, err
	}

	if a.revoker != nil {
		revoked, err := a.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, nil, apierr.ErrTokenInvalid
		}
		cutoff, ok, err := a.revoker.RevokedBefore(ctx, claims.UserID)
		if err != nil {
			return nil, nil, fmt.Errorf("check revocation: %w", err)
		}
		// Issue times and the cut-off are whole seconds; a token from the
		// cut-off second itself is treated as issued before it.
		if ok && claims.IssuedAt != nil && !claims.IssuedAt.Time.After(cutoff) {
			return nil, nil, apierr.ErrTokenInvalid
		}
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, nil, apierr.ErrTokenInvalid
	}
	u, err := a.users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		return nil, nil, apierr.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if u.Status != models.StatusActive {
		return nil, nil, apierr.ErrAccountInactive
	}
	if !authz.HasCapability(u.Role, u.Permissions, capability) {
		return nil, nil, apierr.ErrPermissionDenied
	}
	return u, claims, nil
}

// Logout revokes the caller's token until it would have expired.
func (a *Authenticator) Logout(ctx context.Context, su *auth.SessionUser) error {
	if su == nil {
		return apierr.ErrUnauthenticated
	}
	if a.revoker != nil && su.TokenID != "" {
		if err := a.revoker.Revoke(ctx, su.TokenID, su.ExpiresAt); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	if id, err := primitive.ObjectIDFromHex(su.ID); err == nil {
		a.audit.Logout(ctx, id)
	}
	return nil
}

// HashPassword hashes pw at the configured bcrypt cost after checking the
// minimum length. field names the input in validation errors.
func (a *Authenticator) HashPassword(field, pw string) (string, error) {
	if !inputval.IsValidPassword(pw) {
		return "", apierr.Invalid(field, fmt.Sprintf("Password must be at least %d characters", inputval.MinPasswordLength))
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), a.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (a *Authenticator) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	if strings.TrimSpace(current) == "" {
		return apierr.Invalid("currentPassword", "Current password is required")
	}
	hash, err := a.HashPassword("newPassword", next)
	if err != nil {
		return err
	}

	u, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) {
		return apierr.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return apierr.Invalid("currentPassword", "Current password is incorrect")
	}

	if err := a.users.SetPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	a.audit.PasswordChanged(ctx, userID)
	return nil
}

// RevokeAll invalidates every token issued to userID so far. Used after an
// admin resets a password or deletes an account.
func (a *Authenticator) RevokeAll(ctx context.Context, userID primitive.ObjectID) error {
	if a.revoker == nil {
		return nil
	}
	if err := a.revoker.RevokeUserBefore(ctx, userID.Hex(), a.now(), a.tokens.TTL()); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}
