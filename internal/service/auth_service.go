package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jenca-cloud/users/internal/auth"
	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/model"
	"github.com/jenca-cloud/users/internal/repository"
)

const bcryptCost = 10

// AuthService is the credential and session state machine. Signup does
// not log the user in; login establishes a session; logout requires one.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (sessionCookie string, err error)
	Logout(ctx context.Context, sessionCookie string) error
}

type authService struct {
	users    repository.UserRepository
	sessions *auth.SessionManager
}

// NewAuthService creates the authentication service over the record
// store and a session manager.
func NewAuthService(users repository.UserRepository, sessions *auth.SessionManager) AuthService {
	return &authService{users: users, sessions: sessions}
}

// Signup registers a new user. The plaintext password never reaches the
// record store: only the bcrypt hash is persisted.
func (s *authService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: string(hashed)}
	// The primary key settles a concurrent signup race: Create surfaces
	// ErrUserExists for the loser.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and establishes a session. An unknown email
// and a wrong password are distinguishable failures.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	return s.sessions.Establish(ctx, user)
}

// Logout revokes the session carried by the cookie value, failing with
// apperrors.ErrNoSession when the caller is anonymous.
func (s *authService) Logout(ctx context.Context, sessionCookie string) error {
	return s.sessions.Revoke(ctx, sessionCookie)
}
