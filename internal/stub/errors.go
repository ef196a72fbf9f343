package stub

import (
	"errors"
	"net/http"
)

// Error is a failure with the HTTP status and message the account service answers with.
type Error struct {
	Status  int
	Message string
}

// Error returns the message.
func (e *Error) Error() string {
	return e.Message
}

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// NewInputError builds a 400 with a user-facing message.
func NewInputError(message string) *Error {
	return newError(http.StatusBadRequest, message)
}

var (
	ErrInvalidCredentials     = newError(http.StatusUnauthorized, "Invalid username or password")
	ErrNotAuthenticated       = newError(http.StatusUnauthorized, "Not authenticated")
	ErrVerificationIncomplete = newError(http.StatusUnauthorized, "2FA verification incomplete")
	ErrVerificationExpired    = newError(http.StatusUnauthorized, "Verification session expired")
	ErrInvalidCode            = newError(http.StatusBadRequest, "Invalid verification code")
	ErrUserExists             = newError(http.StatusConflict, "Username or email already registered")
	ErrWrongPassword          = newError(http.StatusBadRequest, "Current password is incorrect")
	ErrNoPendingSecret        = newError(http.StatusBadRequest, "Generate a 2FA secret first")
	ErrMissingCaptcha         = newError(http.StatusBadRequest, "Recaptcha verification failed")
	ErrSessionNotFound        = newError(http.StatusNotFound, "Session not found")
	ErrCurrentSession         = newError(http.StatusBadRequest, "Cannot revoke the current session")
)

// StatusOf returns the HTTP status and message for err. Unknown errors are 500.
func StatusOf(err error) (int, string) {
	var stubErr *Error
	if errors.As(err, &stubErr) {
		return stubErr.Status, stubErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}
