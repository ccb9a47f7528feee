package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserExists is returned when creating a user whose email is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no record exists for an email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrNoSession is returned when an operation requires a live session.
	ErrNoSession = errors.New("no active session")
)

// APIError is the problem-style body surfaced to HTTP clients.
type APIError struct {
	Status int    `json:"-"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return e.Detail
}

// ValidationError reports a missing required property.
func ValidationError(property string) *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Title:  "There was an error validating the given arguments.",
		Detail: fmt.Sprintf("'%s' is a required property", property),
	}
}

// MalformedJSONError reports a request body that could not be decoded.
func MalformedJSONError() *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Title:  "There was an error validating the given arguments.",
		Detail: "the request body is not valid JSON",
	}
}

// ConflictError reports a duplicate create for an email address.
func ConflictError(email string) *APIError {
	return &APIError{
		Status: http.StatusConflict,
		Title:  "There is already a user with the given email address.",
		Detail: fmt.Sprintf("A user already exists with the email %q", email),
	}
}

// NotFoundError reports a lookup or delete against an absent record.
func NotFoundError(email string) *APIError {
	return &APIError{
		Status: http.StatusNotFound,
		Title:  "The requested user does not exist.",
		Detail: fmt.Sprintf("No user exists with the email %q", email),
	}
}

// UnsupportedMediaTypeError rejects requests whose declared content type
// is not the structured-data media type.
func UnsupportedMediaTypeError() *APIError {
	return &APIError{
		Status: http.StatusUnsupportedMediaType,
		Title:  "The request content type is not supported.",
		Detail: `This endpoint only accepts "application/json" requests.`,
	}
}
