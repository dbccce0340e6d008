package models

import "time"

// UserRole gates administrative views.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// ParseUserRole returns the role, defaulting unknown or empty values to user.
func ParseUserRole(raw string) UserRole {
	if UserRole(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User is the signed-in identity with its profile fields.
type User struct {
	ID       string   `db:"id" json:"id"`
	Email    string   `db:"email" json:"email"`
	FullName string   `db:"full_name" json:"full_name"`
	Role     UserRole `db:"role" json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is an authenticated session issued by the remote data service.
type Session struct {
	ID           string    `json:"id"`
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token has passed its expiry at now.
// A zero expiry never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
