package services

import (
	"errors"
	"net/http"
)

// AppError is the single typed error all domain failures are raised as. The
// status code carries the error kind; handlers render it into the JSON error
// envelope.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Status: http.StatusConflict, Message: message}
}

// AsAppError unwraps err into an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Session and registration failures. Login failures share one message so the
// response never reveals whether the email exists.
var (
	ErrInvalidCredentials  = NewUnauthorizedError("Invalid email or password.")
	ErrMissingRefreshToken = NewUnauthorizedError("Refresh token is missing.")
	ErrInvalidRefreshToken = NewUnauthorizedError("Invalid or expired refresh token.")
	ErrRevokedRefreshToken = NewUnauthorizedError("Refresh token is revoked or expired.")
	ErrUserGone            = NewUnauthorizedError("User no longer exists.")

	ErrEmailTaken       = NewConflictError("Email is already registered.")
	ErrNotApproved      = NewForbiddenError("This email has not been approved for registration. Contact your institution.")
	ErrApprovalConsumed = NewConflictError("This email has already been used to register.")

	ErrMissingAccessToken = NewUnauthorizedError("Not authorized. Access token is missing.")
	ErrInvalidAccessToken = NewUnauthorizedError("Invalid or expired access token.")
	ErrForbidden          = NewForbiddenError("Forbidden. You do not have permission.")
)
