package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jenca-cloud/users/internal/cache"
	apperrors "github.com/jenca-cloud/users/internal/errors"
)

const sessionKeyPrefix = "session:"

// SessionStoreInterface tracks which sessions are live server-side, so
// logout can revoke a cookie before it expires.
type SessionStoreInterface interface {
	Save(ctx context.Context, sessionID, email string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (email string, err error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionStore keeps live sessions in Redis.
type SessionStore struct {
	cache *cache.Client
}

var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

type sessionRecord struct {
	Email string `json:"email"`
}

// Save records a live session with a TTL matching the cookie lifetime.
func (s *SessionStore) Save(ctx context.Context, sessionID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(sessionRecord{Email: email})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sessionID, payload, ttl)
}

// Get returns the email behind a live session, or apperrors.ErrNoSession.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil || data == nil {
		return "", apperrors.ErrNoSession
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", apperrors.ErrNoSession
	}
	return rec.Email, nil
}

// Delete revokes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}
