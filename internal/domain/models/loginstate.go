// internal/domain/models/loginstate.go
package models

import "time"

// LoginState is the lock-relevant part of a user after a failed attempt.
type LoginState struct {
	LoginAttempts int        `bson:"login_attempts"`
	LockUntil     *time.Time `bson:"lock_until,omitempty"`
}

// Locked reports whether the state carries a lock that is active at now.
func (s LoginState) Locked(now time.Time) bool {
	return s.LockUntil != nil && s.LockUntil.After(now)
}
