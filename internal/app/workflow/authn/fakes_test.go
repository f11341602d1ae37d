package authn_test

import (
	"context"
	"sync"
	"time"

	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUsers mirrors the Mongo credential store semantics in memory,
// including the lock-expiry restart of the failure counter.
type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers(us ...models.User) *memUsers {
	m := &memUsers{users: map[primitive.ObjectID]*models.User{}}
	for i := range us {
		u := us[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *memUsers) get(id primitive.ObjectID) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *m.users[id]
	return &u
}

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsernameAndRole(_ context.Context, username, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username && u.Role == role {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (m *memUsers) IncrementLoginAttempts(_ context.Context, id primitive.ObjectID, now time.Time, threshold int, lockFor time.Duration) (models.LoginState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.LoginState{}, userstore.ErrNotFound
	}
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		u.LoginAttempts = 1
		u.LockUntil = nil
	} else {
		u.LoginAttempts++
	}
	if u.LoginAttempts >= threshold && u.LockUntil == nil {
		until := now.Add(lockFor)
		u.LockUntil = &until
	}
	return models.LoginState{LoginAttempts: u.LoginAttempts, LockUntil: u.LockUntil}, nil
}

func (m *memUsers) ClearLoginAttempts(_ context.Context, id primitive.ObjectID, lastLogin *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return userstore.ErrNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	if lastLogin != nil {
		t := *lastLogin
		u.LastLogin = &t
	}
	return nil
}

func (m *memUsers) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return userstore.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) setStatus(id primitive.ObjectID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Status = status
}

func (m *memUsers) delete(id primitive.ObjectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}
