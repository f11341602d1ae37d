// Package revocations keeps revoked session tokens in Redis until they
// would have expired anyway.
package revocations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps Redis failures.
var ErrUnavailable = errors.New("revocation store unavailable")

type Store struct {
	rdb    *redis.Client
	prefix string
}

// New returns a store writing keys under prefix (e.g. "crms").
func New(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) tokenKey(jti string) string {
	return s.prefix + ":revoked:" + jti
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":revoked_before:" + userID
}

// Revoke marks token jti revoked until expiresAt. Tokens already past
// expiry need no entry.
func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, s.tokenKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// RevokeUserBefore invalidates every token of userID issued up to and
// including the second of at. The marker lives for ttl, which should be the
// longest token lifetime.
func (s *Store) RevokeUserBefore(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	v := strconv.FormatInt(at.Unix(), 10)
	if err := s.rdb.Set(ctx, s.userKey(userID), v, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RevokedBefore returns the cut-off set by RevokeUserBefore, if any.
func (s *Store) RevokedBefore(ctx context.Context, userID string) (time.Time, bool, error) {
	secs, err := s.rdb.Get(ctx, s.userKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Unix(secs, 0), true, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
