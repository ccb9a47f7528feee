package auth

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/model"
)

// UserLookup resolves an email address to the stored user record,
// returning apperrors.ErrUserNotFound when absent. The repository
// satisfies it; session management needs nothing more from the store.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionManager establishes and revokes authenticated sessions. It
// holds a lookup capability into the record store rather than the record
// type carrying session behavior itself.
type SessionManager struct {
	tokens *TokenService
	store  SessionStoreInterface
	users  UserLookup
}

// NewSessionManager wires session handling over a token service, a
// session store and a user lookup.
func NewSessionManager(tokens *TokenService, store SessionStoreInterface, users UserLookup) *SessionManager {
	return &SessionManager{tokens: tokens, store: store, users: users}
}

// Establish issues a signed session cookie value for the user and
// records the session server-side.
func (m *SessionManager) Establish(ctx context.Context, user *model.User) (string, error) {
	token := m.tokens.FederatedToken(user.Email, user.PasswordHash)
	sessionID, signed, err := m.tokens.IssueSession(user.Email, token)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	if err := m.store.Save(ctx, sessionID, user.Email, SessionTTL); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return signed, nil
}

// Revoke ends the session carried by a signed cookie value. The
// federated token claim is checked against the user's current password
// hash, so a cookie issued before a password change is no longer a live
// session. Returns apperrors.ErrNoSession when there is nothing to end.
func (m *SessionManager) Revoke(ctx context.Context, signed string) error {
	claims, err := m.tokens.ParseSession(signed)
	if err != nil {
		return apperrors.ErrNoSession
	}

	user, err := m.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrNoSession
		}
		return err
	}

	if !m.tokens.VerifyFederatedToken(claims.Token, user.Email, user.PasswordHash) {
		return apperrors.ErrNoSession
	}

	if _, err := m.store.Get(ctx, claims.ID); err != nil {
		return apperrors.ErrNoSession
	}
	return m.store.Delete(ctx, claims.ID)
}
