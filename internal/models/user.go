// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents a user's account type in the marketplace.
// The set is closed; anything else is rejected at the boundary.
type Role string

const (
	RoleUser       Role = "USER"
	RoleFreelancer Role = "FREELANCER"
	RoleSupplier   Role = "SUPPLIER"
	RolePrinter    Role = "PRINTER"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole canonicalizes a role string. This is the single place role
// strings are normalized — everywhere else compares Role values directly.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleFreelancer:
		return RoleFreelancer, true
	case RoleSupplier:
		return RoleSupplier, true
	case RolePrinter:
		return RolePrinter, true
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	}
	return "", false
}

// User represents a marketplace account. Regular users authenticate with
// a phone number and SMS OTP; super-admins additionally carry a password
// hash and a TOTP secret for the admin panel.
type User struct {
	ID          uuid.UUID `json:"id"`
	Phone       string    `json:"phone"`
	Email       *string   `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`

	// Admin-panel credentials. Nil for regular accounts.
	PasswordHash *string `json:"-"`
	TOTPSecret   *string `json:"-"`
	TOTPEnabled  bool    `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSuperAdmin reports whether the user holds the admin capability.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// Needs2FASetup reports whether an admin account has not yet enrolled
// a TOTP device. Admins must complete enrollment on first login.
func (u *User) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
