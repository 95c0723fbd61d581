package auth

import (
	"time"

	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterPharmacy is the pharmacy half of a sign-up.
type RegisterPharmacy struct {
	Name          string   `json:"name" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	LGA           string   `json:"lga" validate:"required"`
	State         string   `json:"state" validate:"required"`
	Ward          string   `json:"ward" validate:"required"`
	Phone         string   `json:"phone" validate:"required"`
	LicenseNumber string   `json:"licenseNumber" validate:"required"`
	Latitude      *float64 `json:"latitude" validate:"required,latitude"`
	Longitude     *float64 `json:"longitude" validate:"required,longitude"`
}

// RegisterUser is the staff account half of a sign-up.
type RegisterUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a pharmacy together with its first staff account.
type RegisterRequest struct {
	Pharmacy        RegisterPharmacy `json:"pharmacy" validate:"required"`
	User            RegisterUser     `json:"user" validate:"required"`
	ConfirmPassword string           `json:"confirmPassword" validate:"required"`
}

// ForgotPasswordRequest asks for a password reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// SessionResponse describes the signed-in state after login or registration.
type SessionResponse struct {
	User      *session.User `json:"user"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
}

// MessageResponse carries a user-facing confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// authPayload is the backend reply to login and register.
type authPayload struct {
	Token    string            `json:"token"`
	User     session.User      `json:"user"`
	Pharmacy *session.Pharmacy `json:"pharmacy,omitempty"`
}

type registerBody struct {
	Pharmacy RegisterPharmacy `json:"pharmacy"`
	User     RegisterUser     `json:"user"`
}
