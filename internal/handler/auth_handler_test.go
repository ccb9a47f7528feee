package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jenca-cloud/users/internal/auth"
	"github.com/jenca-cloud/users/internal/config"
	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/handler"
	"github.com/jenca-cloud/users/internal/model"
	"github.com/jenca-cloud/users/internal/repository"
	"github.com/jenca-cloud/users/internal/router"
	"github.com/jenca-cloud/users/internal/service"
)

// memSessionStore keeps sessions in a map, standing in for Redis.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]string)}
}

func (s *memSessionStore) Save(_ context.Context, sessionID, email string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = email
	return nil
}

func (s *memSessionStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.sessions[sessionID]
	if !ok {
		return "", apperrors.ErrNoSession
	}
	return email, nil
}

func (s *memSessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

type authServer struct {
	e     *echo.Echo
	users repository.UserRepository
}

func newAuthServer(t *testing.T) *authServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.User{}))

	users := repository.NewUserRepository(gormDB)
	tokens := auth.NewTokenService("test-secret")
	sessions := auth.NewSessionManager(tokens, newMemSessionStore(), users)
	svc := service.NewAuthService(users, sessions)

	e := echo.New()
	router.RegisterAuth(e, &config.Config{SecretKey: "test-secret"}, handler.NewAuthHandler(svc))
	return &authServer{e: e, users: users}
}

func (s *authServer) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func credentials(email, password string) url.Values {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	return form
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginForm(t *testing.T) {
	srv := newAuthServer(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	srv.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestSignup(t *testing.T) {
	t.Run("creates a user and echoes the plaintext pair", func(t *testing.T) {
		srv := newAuthServer(t)

		rec := srv.postForm("/signup", credentials("alice@example.com", "secret"))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"email":"alice@example.com","password":"secret"}`, rec.Body.String())

		// The stored record carries a hash, never the plaintext.
		user, err := srv.users.FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "secret", user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("conflict for an existing email", func(t *testing.T) {
		srv := newAuthServer(t)

		srv.postForm("/signup", credentials("alice@example.com", "secret"))
		rec := srv.postForm("/signup", credentials("alice@example.com", "another"))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		srv := newAuthServer(t)

		form := url.Values{}
		form.Set("email", "alice@example.com")
		rec := srv.postForm("/signup", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("does not log the user in", func(t *testing.T) {
		srv := newAuthServer(t)

		rec := srv.postForm("/signup", credentials("alice@example.com", "secret"))
		for _, c := range rec.Result().Cookies() {
			assert.NotEqual(t, handler.SessionCookieName, c.Name)
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("correct password establishes a session", func(t *testing.T) {
		srv := newAuthServer(t)
		srv.postForm("/signup", credentials("alice@example.com", "secret"))

		rec := srv.postForm("/login", credentials("alice@example.com", "secret"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"email":"alice@example.com","password":"secret"}`, rec.Body.String())

		cookie := sessionCookie(t, rec)
		assert.NotEmpty(t, cookie.Value)
		assert.False(t, cookie.Expires.IsZero())
	})

	t.Run("unknown email", func(t *testing.T) {
		srv := newAuthServer(t)

		rec := srv.postForm("/login", credentials("nobody@example.com", "secret"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		srv := newAuthServer(t)
		srv.postForm("/signup", credentials("alice@example.com", "secret"))

		rec := srv.postForm("/login", credentials("alice@example.com", "wrong"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		// The failure never reveals the stored hash.
		user, err := srv.users.FindByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.NotContains(t, rec.Body.String(), user.PasswordHash)
	})
}

func TestLogout(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		srv := newAuthServer(t)

		rec := srv.postForm("/logout", url.Values{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an unsigned cookie", func(t *testing.T) {
		srv := newAuthServer(t)

		rec := srv.postForm("/logout", url.Values{}, &http.Cookie{
			Name:  handler.SessionCookieName,
			Value: "garbage",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ends the session exactly once", func(t *testing.T) {
		srv := newAuthServer(t)
		srv.postForm("/signup", credentials("alice@example.com", "secret"))
		login := srv.postForm("/login", credentials("alice@example.com", "secret"))
		cookie := sessionCookie(t, login)

		rec := srv.postForm("/logout", url.Values{}, cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{}`, rec.Body.String())

		// The session is gone; replaying the cookie is anonymous again.
		rec = srv.postForm("/logout", url.Values{}, cookie)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("password change invalidates issued cookies", func(t *testing.T) {
		srv := newAuthServer(t)
		srv.postForm("/signup", credentials("alice@example.com", "secret"))
		login := srv.postForm("/login", credentials("alice@example.com", "secret"))
		cookie := sessionCookie(t, login)

		// Password change is delete-then-recreate: the new record carries
		// a new hash, so the old cookie's federated token no longer
		// verifies.
		_, err := srv.users.Delete(context.Background(), "alice@example.com")
		require.NoError(t, err)
		srv.postForm("/signup", credentials("alice@example.com", "new-password"))

		rec := srv.postForm("/logout", url.Values{}, cookie)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
