// Package revocation is the Redis-backed store for the two ephemeral
// token records: active refresh tokens and blacklisted access-token IDs.
// Key existence is the sole proof of refresh-token validity; deleting the
// key invalidates the token. Both namespaces expire on their own TTL, so
// nothing here ever needs garbage collection.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the requested token record does not
// exist, was already consumed, or expired.
var ErrNotFound = errors.New("revocation: token not found")

// ErrUnavailable wraps transport failures talking to Redis.
var ErrUnavailable = errors.New("revocation: redis unavailable")

// blacklistMarker is the sentinel value stored for blacklisted IDs; only
// key existence matters.
const blacklistMarker = "1"

// Store namespaces refresh and blacklist records under a common prefix.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore wraps client with the given key prefix ("auth" if empty).
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "auth"
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) refreshKey(jti string) string {
	return s.prefix + ":refresh:" + jti
}

func (s *Store) blacklistKey(jti string) string {
	return s.prefix + ":blacklist:" + jti
}

// SaveRefresh records jti as a live refresh token owned by userID for
// ttl. The record disappears on its own when ttl elapses.
func (s *Store) SaveRefresh(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.refreshKey(jti), userID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ConsumeRefresh atomically fetches and deletes the refresh record,
// returning the owning user ID. Of any number of concurrent calls for
// the same jti, exactly one succeeds; the rest get ErrNotFound. This is
// what makes refresh tokens single-use.
func (s *Store) ConsumeRefresh(ctx context.Context, jti string) (string, error) {
	userID, err := s.redis.GetDel(ctx, s.refreshKey(jti)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return userID, nil
}

// DeleteRefresh removes the refresh record without reading it,
// reporting whether it existed.
func (s *Store) DeleteRefresh(ctx context.Context, jti string) (bool, error) {
	deleted, err := s.redis.Del(ctx, s.refreshKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return deleted > 0, nil
}

// Blacklist marks an access-token ID as revoked for its remaining
// natural lifetime. A non-positive remaining lifetime is a no-op: the
// token is already rejected by expiry checking alone.
func (s *Store) Blacklist(ctx context.Context, jti string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.blacklistKey(jti), blacklistMarker, remaining).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsBlacklisted reports whether the access-token ID was revoked.
func (s *Store) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
