package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SessionTTL is how long a remember-me session cookie stays valid.
const SessionTTL = 30 * 24 * time.Hour

// SessionClaims are carried in the signed session cookie.
type SessionClaims struct {
	Email string `json:"email"`
	// Token is the federated token bound at login time. It is recomputed
	// from the stored password hash on every check, so a password change
	// orphans every cookie issued before it.
	Token string `json:"token"`
	jwt.RegisteredClaims
}

// TokenService issues and checks the authentication service's tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// FederatedToken derives the token other services use to identify a
// session: an HMAC over the email and the current password hash.
// Changing the password changes the hash and with it every previously
// issued token.
func (s *TokenService) FederatedToken(email, passwordHash string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(email))
	mac.Write([]byte{0})
	mac.Write([]byte(passwordHash))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyFederatedToken checks a token against the current email and
// password hash in constant time.
func (s *TokenService) VerifyFederatedToken(token, email, passwordHash string) bool {
	want := s.FederatedToken(email, passwordHash)
	return hmac.Equal([]byte(token), []byte(want))
}

// IssueSession signs a session cookie value for the user. The session ID
// is returned separately for server-side tracking.
func (s *TokenService) IssueSession(email, federatedToken string) (sessionID, signed string, err error) {
	sessionID = uuid.New().String()
	claims := &SessionClaims{
		Email: email,
		Token: federatedToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err = token.SignedString(s.secret)
	return sessionID, signed, err
}

// ParseSession validates a session cookie value and returns its claims.
func (s *TokenService) ParseSession(signed string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(signed, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
