package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/service"
)

// UserHandler bundles the storage service's HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer over the user service.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest carries a new record. Fields are pointers so a
// missing property is distinguishable from an empty string.
type CreateUserRequest struct {
	Email        *string `json:"email" validate:"required"`
	PasswordHash *string `json:"password_hash" validate:"required"`
}

// CreateUser godoc
// @Summary Create a user record
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User record"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Failure 415 {object} errors.APIError
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		body := apperrors.MalformedJSONError()
		return c.JSON(body.Status, body)
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validationBody(err))
	}

	user, err := h.svc.CreateUser(c.Request().Context(), *req.Email, *req.PasswordHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			return c.JSON(http.StatusConflict, apperrors.ConflictError(*req.Email))
		}
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user record by email
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.APIError
// @Failure 415 {object} errors.APIError
// @Router /users/{email} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	email := c.Param("email")
	user, err := h.svc.GetUser(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, apperrors.NotFoundError(email))
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user record, returning its last snapshot
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.APIError
// @Failure 415 {object} errors.APIError
// @Router /users/{email} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	email := c.Param("email")
	user, err := h.svc.DeleteUser(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, apperrors.NotFoundError(email))
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List all user records
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {array} model.User
// @Failure 415 {object} errors.APIError
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// validationBody turns the first field failure into the wire-format
// problem body, named after the JSON property.
func validationBody(err error) *apperrors.APIError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.ValidationError(fieldErrs[0].Field())
	}
	return apperrors.ValidationError("email")
}
