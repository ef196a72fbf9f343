package model

import (
	"strings"
	"time"
)

// Role names a permission tier on the account service.
type Role string

const (
	// RoleUser is a regular account.
	RoleUser Role = "user"
	// RoleAdmin is an administrator account.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the account record returned by the account service.
// The client never edits it in place; profile updates replace the whole record.
type User struct {
	ID        string     `json:"_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Signup carries registration details.
type Signup struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// Credentials carries the primary login factor.
type Credentials struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	RememberMe     bool   `json:"rememberMe,omitempty"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// Validate checks the fields the login form requires.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return NewValidationError("Username is required")
	}
	if c.Password == "" {
		return NewValidationError("Password is required")
	}
	return nil
}

// LoginResult is the outcome of the primary credential check.
// Exactly one of User or TwoFactorRequired is meaningful.
type LoginResult struct {
	User              *User
	TwoFactorRequired bool
	Message           string
}

// TwoFactorSecret is issued when 2FA enrollment begins.
type TwoFactorSecret struct {
	Secret string `json:"secret"`
	QRCode string `json:"qrCode"`
}
