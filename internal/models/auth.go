package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	FullName    string   `json:"full_name" validate:"required"`
	Password    string   `json:"password" validate:"required,min=6"`
	Role        UserRole `json:"role" validate:"omitempty,oneof=TEACHER STUDENT"`
	Institution string   `json:"institution"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token and user info.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Role        UserRole `json:"role"`
	Institution string   `json:"institution"`
}

// JWTClaims represents the JWT payload for access tokens. It carries the
// full principal: everything the visibility resolver and roster manager
// need without a user lookup.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	FullName    string   `json:"full_name"`
	Role        UserRole `json:"role"`
	Institution string   `json:"institution"`
	GuardianID  *string  `json:"guardian_id,omitempty"`
	ClassName   string   `json:"class_name,omitempty"`
	jwt.RegisteredClaims
}

// VisibilityFilterFromClaims projects the claims into a card store filter.
func VisibilityFilterFromClaims(claims *JWTClaims) VisibilityFilter {
	return VisibilityFilter{
		UserID:     claims.UserID,
		Role:       claims.Role,
		GuardianID: claims.GuardianID,
		ClassName:  claims.ClassName,
	}
}
