package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a sponsor.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and sponsor info.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   int64       `json:"expires_in"`
	IssuedAt    time.Time   `json:"issued_at"`
	Sponsor     SponsorInfo `json:"sponsor"`
}

// ChangePasswordRequest payload for updating a sponsor password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// SponsorInfo describes the authenticated sponsor in responses.
type SponsorInfo struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Subject     Subject     `json:"subject"`
	LunchPeriod LunchPeriod `json:"lunch_period"`
}

// SponsorClaims is the JWT payload for sponsor access tokens. The subject
// department rides along so handlers can log it, but the engine always
// re-reads the sponsor record before deciding priority.
type SponsorClaims struct {
	SponsorID string  `json:"sponsor_id"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	Subject   Subject `json:"subject"`
	jwt.RegisteredClaims
}
