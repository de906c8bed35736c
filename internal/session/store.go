// Package session implements server-side login sessions.  The browser holds
// only an opaque random identifier in a cookie; the session record itself
// lives in Redis under a TTL, with a per-user index set so every session
// belonging to a user can be destroyed at once after a password reset.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session id does not resolve to a live
// session (expired, destroyed, or never issued).
var ErrNotFound = errors.New("session not found")

// Session is a live login session.
type Session struct {
	ID       string
	UserID   uint64
	Remember bool
}

// Store is the session contract the handlers and middleware depend on.
type Store interface {
	Create(ctx context.Context, userID uint64, remember bool) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Destroy(ctx context.Context, id string) error
	DestroyAllForUser(ctx context.Context, userID uint64) error
}

// RedisStore keeps sessions in Redis.  Keys:
//   session:<id>        – hash {user_id, remember}, expires with the session
//   user_sessions:<uid> – set of live session ids for destroy-all
type RedisStore struct {
	client      *redis.Client
	sessionTTL  time.Duration // lifetime of a regular login
	rememberTTL time.Duration // lifetime when "remember me" was requested
}

func NewRedisStore(client *redis.Client, sessionTTL, rememberTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, sessionTTL: sessionTTL, rememberTTL: rememberTTL}
}

// Create issues a fresh session id and stores the session under the TTL
// selected by the remember flag.
func (s *RedisStore) Create(ctx context.Context, userID uint64, remember bool) (Session, error) {
	id, err := newSessionID()
	if err != nil {
		return Session{}, err
	}
	ttl := s.sessionTTL
	if remember {
		ttl = s.rememberTTL
	}
	key := sessionKey(id)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "user_id", strconv.FormatUint(userID, 10), "remember", boolField(remember))
	pipe.Expire(ctx, key, ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), id)
	// The index set outlives any single session; keep it bounded by the
	// longest possible session lifetime.
	pipe.Expire(ctx, userSessionsKey(userID), s.rememberTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return Session{}, err
	}
	return Session{ID: id, UserID: userID, Remember: remember}, nil
}

// Get resolves a session id to its session, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	vals, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return Session{}, err
	}
	if len(vals) == 0 {
		return Session{}, ErrNotFound
	}
	uid, err := strconv.ParseUint(vals["user_id"], 10, 64)
	if err != nil || uid == 0 {
		return Session{}, ErrNotFound
	}
	return Session{ID: id, UserID: uid, Remember: vals["remember"] == "1"}, nil
}

// Destroy removes a single session and its index entry.  Destroying a
// session that no longer exists is not an error.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	vals, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if uidStr, ok := vals["user_id"]; ok {
		if uid, err := strconv.ParseUint(uidStr, 10, 64); err == nil {
			_ = s.client.SRem(ctx, userSessionsKey(uid), id).Err()
		}
	}
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// DestroyAllForUser drops every live session of a user.  Used after a
// password reset so stolen cookies die with the old credential.
func (s *RedisStore) DestroyAllForUser(ctx context.Context, userID uint64) error {
	ids, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	return s.client.Del(ctx, keys...).Err()
}

func sessionKey(id string) string { return "session:" + id }

func userSessionsKey(userID uint64) string {
	return "user_sessions:" + strconv.FormatUint(userID, 10)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// newSessionID returns 16 bytes of cryptographically secure randomness as a
// 32-character hex string.
func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
