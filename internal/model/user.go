// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
//
// Accounts are created unapproved and stay that way until an admin approves
// them; approval is one-way. Only approved admins may approve other accounts.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize
	Reason       string     `json:"reason"`
	Approved     bool       `json:"approved"`
	Admin        bool       `json:"admin"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CanAdminister reports whether this user may perform admin-only operations.
// Admin rights require both the admin flag and an approved account.
func (u *User) CanAdminister() bool {
	return u.Admin && u.Approved
}

// Identity is the authenticated caller resolved from a verified token.
// It is injected into the request context by the admin auth middleware.
type Identity struct {
	UserID   string
	Email    string
	Admin    bool
	Approved bool
}
