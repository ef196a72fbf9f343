package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies failures surfaced by the request gateway and the flows above it.
type ErrorKind int

const (
	// KindNetwork is a transport failure with no response.
	KindNetwork ErrorKind = iota + 1
	// KindCredentialExpired is a 401 received while the client believed it was logged in.
	KindCredentialExpired
	// KindUnauthorized is a 401 received while already logged out.
	KindUnauthorized
	// KindValidation is a user-actionable 4xx (or a 2xx envelope with success=false).
	KindValidation
	// KindChallengeExpired is an expired second-factor challenge.
	KindChallengeExpired
	// KindServer is a 5xx or an undecodable response.
	KindServer
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindCredentialExpired:
		return "credential_expired"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindChallengeExpired:
		return "challenge_expired"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

var (
	ErrNetwork           = errors.New("network failure")
	ErrCredentialExpired = errors.New("credential expired")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failure")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrServer            = errors.New("server failure")
)

var kindSentinels = map[ErrorKind]error{
	KindNetwork:           ErrNetwork,
	KindCredentialExpired: ErrCredentialExpired,
	KindUnauthorized:      ErrUnauthorized,
	KindValidation:        ErrValidation,
	KindChallengeExpired:  ErrChallengeExpired,
	KindServer:            ErrServer,
}

// SessionExpiredMessage is surfaced when the gateway logs the user out on a 401.
const SessionExpiredMessage = "Session expired. Please login again."

// APIError is the typed failure every caller above the gateway receives.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

// Error returns the kind and message, with the status or cause when there is one.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the transport cause, so context errors stay detectable.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *APIError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewValidationError builds a local validation failure with a user-facing message.
func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message}
}

// NewChallengeExpiredError builds a local challenge-expiry failure.
func NewChallengeExpiredError(message string) *APIError {
	return &APIError{Kind: KindChallengeExpired, Message: message}
}

// KindForStatus maps a non-2xx HTTP status to a failure kind. 401 is resolved by the gateway.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusGone:
		return KindChallengeExpired
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsVerificationIncomplete reports whether err is the server's signal that a
// second-factor challenge is outstanding for the ambient session.
func IsVerificationIncomplete(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "verification incomplete")
}

// IsExpiry reports whether err says the code or the pending session expired.
func IsExpiry(err error) bool {
	if errors.Is(err, ErrChallengeExpired) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "expired")
}

// Local failures raised before any network call.
var (
	ErrIncompleteCode       = errors.New("please enter the complete 6-digit code")
	ErrSubmissionInFlight   = errors.New("verification already in progress")
	ErrChallengeClosed      = errors.New("challenge closed")
	ErrCurrentSessionRevoke = errors.New("current session cannot be revoked here; log out instead")
	ErrUnknownSession       = errors.New("session is not in the listed devices")
	ErrEmptyName            = errors.New("name cannot be empty")
	ErrPasswordMismatch     = errors.New("new passwords do not match")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrMissingCaptcha       = errors.New("recaptcha verification failed")
	ErrNotFound             = errors.New("not found")
)
