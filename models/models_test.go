package models

import (
	"testing"

	"tabml/internal/errors"
)

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{Name: "Ada", Email: "ada@example.com", Mobile: "0123456789", Password: "secret123"}

	tests := []struct {
		name     string
		mutate   func(*SignupRequest)
		wantCode string
	}{
		{"valid", func(r *SignupRequest) {}, ""},
		{"missing name", func(r *SignupRequest) { r.Name = " " }, errors.CodeMissingParameter},
		{"missing password", func(r *SignupRequest) { r.Password = "" }, errors.CodeMissingParameter},
		{"bad email", func(r *SignupRequest) { r.Email = "ada@example" }, errors.CodeValidationError},
		{"email with space", func(r *SignupRequest) { r.Email = "a da@example.com" }, errors.CodeValidationError},
		{"short mobile", func(r *SignupRequest) { r.Mobile = "12345" }, errors.CodeValidationError},
		{"mobile with letters", func(r *SignupRequest) { r.Mobile = "01234x6789" }, errors.CodeValidationError},
		{"short password", func(r *SignupRequest) { r.Password = "abc123" }, errors.CodeValidationError},
		{"password without digit", func(r *SignupRequest) { r.Password = "abcdefgh" }, errors.CodeValidationError},
		{"password without letter", func(r *SignupRequest) { r.Password = "12345678" }, errors.CodeValidationError},
		{"password with symbol", func(r *SignupRequest) { r.Password = "abc12345!" }, errors.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("expected code %s, got %s (%v)", tt.wantCode, got, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	if err := (LoginRequest{Email: "ada@example.com", Password: "x"}).Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if got := errors.GetCode(LoginRequest{Email: "ada@example.com"}.Validate()); got != errors.CodeMissingParameter {
		t.Errorf("expected missing parameter, got %s", got)
	}
	if got := errors.GetCode(LoginRequest{Email: "nope", Password: "x"}.Validate()); got != errors.CodeValidationError {
		t.Errorf("expected validation error, got %s", got)
	}
}
