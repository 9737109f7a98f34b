package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is a domain error carrying an HTTP-equivalent status code. The
// request layer serializes it to the caller; anything else surfaces as a
// generic internal error so stack detail never leaks.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the given status and message
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// NotFound creates a 404 error
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// BadRequest creates a 400 error
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden creates a 403 error
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// Write serializes err to w as {"message": ...} JSON. Non-API errors are
// reported as a plain internal server error.
func Write(w http.ResponseWriter, err error) {
	apiErr := &Error{}
	if !errors.As(err, &apiErr) {
		apiErr = New(http.StatusInternalServerError, "Internal server error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(apiErr)
}
