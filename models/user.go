package models

import (
	"regexp"
	"strings"
	"time"

	"tabml/internal/errors"

	"github.com/google/uuid"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	passwordPattern = regexp.MustCompile(`^[A-Za-z\d]{8,}$`)
	letterPattern   = regexp.MustCompile(`[A-Za-z]`)
	digitPattern    = regexp.MustCompile(`\d`)
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Mobile       string    `json:"mobile" db:"mobile"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SignupRequest is the payload of an account registration
type SignupRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Mobile   string `json:"mobile" form:"mobile"`
	Password string `json:"password" form:"password"`
}

// LoginRequest is the payload of a login attempt
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate applies the registration rules in order: presence, email, mobile, password
func (r SignupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Email == "" || r.Mobile == "" || r.Password == "" {
		return errors.New(errors.CodeMissingParameter, "All fields are required")
	}
	if !emailPattern.MatchString(r.Email) {
		return errors.ValidationError("Invalid email format")
	}
	if !mobilePattern.MatchString(r.Mobile) {
		return errors.ValidationError("Mobile number must be 10 digits")
	}
	if !ValidPassword(r.Password) {
		return errors.ValidationError("Password must be at least 8 characters with 1 letter and 1 number")
	}
	return nil
}

// Validate checks that both credentials are present and the email is well formed
func (r LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New(errors.CodeMissingParameter, "Email and password are required")
	}
	if !emailPattern.MatchString(r.Email) {
		return errors.ValidationError("Invalid email format")
	}
	return nil
}

// ValidPassword reports whether p is 8+ letters and digits with at least one of each
func ValidPassword(p string) bool {
	return passwordPattern.MatchString(p) && letterPattern.MatchString(p) && digitPattern.MatchString(p)
}
