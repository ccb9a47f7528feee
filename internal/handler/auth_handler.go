package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jenca-cloud/users/internal/auth"
	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/service"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// AuthHandler bundles the authentication service's HTTP handlers.
type AuthHandler struct {
	svc service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// LoginForm answers GET /login with an empty object, so clients can
// probe the endpoint before posting credentials.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{})
}

// Login authenticates form credentials and sets a persistent session
// cookie. An unknown email is a 404, a wrong password a 401.
func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	cookie, err := h.svc.Login(c.Request().Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "no such user")
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "incorrect password")
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    cookie,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"email": email, "password": password})
}

// Signup registers a new user. The response echoes the plaintext pair to
// confirm receipt; the hash is never returned. Signup does not log in.
func (h *AuthHandler) Signup(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	if _, err := h.svc.Signup(c.Request().Context(), email, password); err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			return echo.NewHTTPError(http.StatusConflict, "a user already exists with that email")
		}
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"email": email, "password": password})
}

// Logout ends the current session. Anonymous callers get a 401; the
// route's cookie guard already rejected requests without a validly
// signed token.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}

	if err := h.svc.Logout(c.Request().Context(), cookie.Value); err != nil {
		if errors.Is(err, apperrors.ErrNoSession) {
			return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{})
}
