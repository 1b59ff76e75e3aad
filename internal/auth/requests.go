// backend/internal/auth/requests.go
package auth

import (
	"quiz-platform/internal/apperr"
	"quiz-platform/internal/httpx"
)

const passwordMismatch = "Password and Confirm password doesn't match"

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

func checkPasswordLength(password string) error {
	if len(password) > maxPasswordBytes {
		return apperr.Validation("password: must be at most 72 bytes")
	}
	return nil
}

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	ProfileImg string `json:"profile_img"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Password2  string `json:"password2" validate:"required"`
}

func (r RegisterRequest) Validate() error {
	if err := httpx.ValidateStruct(r); err != nil {
		return err
	}
	if r.Password != r.Password2 {
		return apperr.Validation(passwordMismatch)
	}
	return checkPasswordLength(r.Password)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,min=3,max=255"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return httpx.ValidateStruct(r)
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

func (r RefreshRequest) Validate() error {
	return httpx.ValidateStruct(r)
}

// PasswordPair is the body of change-password and reset-password.
type PasswordPair struct {
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Password2 string `json:"password2" validate:"required,max=72"`
}

// Validate checks the confirmation before anything else so that a mismatch
// is reported even when the rest of the request is bad.
func (p PasswordPair) Validate() error {
	if p.Password != p.Password2 {
		return apperr.Validation(passwordMismatch)
	}
	if err := httpx.ValidateStruct(p); err != nil {
		return err
	}
	return checkPasswordLength(p.Password)
}

type ResetRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (r ResetRequest) Validate() error {
	return httpx.ValidateStruct(r)
}
