package models

import "github.com/golang-jwt/jwt/v5"

// SignInRequest holds credentials for the login view.
type SignInRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UserMetadata carries the profile fields stored alongside the auth user.
type UserMetadata struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// AccessClaims is the payload of access tokens issued by the Postgres authenticator.
// It mirrors the hosted auth service's claims so both backends expose the same fields.
type AccessClaims struct {
	Email        string       `json:"email"`
	Role         string       `json:"role,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// UserFromMetadata builds a User from auth identity and metadata, applying profile defaults.
func UserFromMetadata(id, email string, meta UserMetadata) User {
	return User{
		ID:       id,
		Email:    email,
		FullName: meta.FullName,
		Role:     ParseUserRole(meta.Role),
	}
}
