package core

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 8

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterRequest is the signup form
type RegisterRequest struct {
	Username        string `json:"username" form:"username" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// Validate checks the form before any storage is touched. Confirmation is
// checked first, then length, then the remaining fields.
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	return fieldError(validate.Struct(r))
}

// LoginRequest is the login form
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Validate never says which field was wrong.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if err := validate.Struct(r); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// LoginResult contains the authenticated identity and the session to set as a cookie
type LoginResult struct {
	Identity *Identity `json:"identity"`
	Session  *Session  `json:"session"`
	Token    string    `json:"-"` // The raw token (not the hash)
}

// fieldError maps the first validator failure to its user-facing sentinel.
func fieldError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		return ErrUsernameRequired
	case "Email":
		if fe.Tag() == "email" {
			return ErrInvalidEmail
		}
		return ErrEmailRequired
	case "Password":
		return ErrPasswordRequired
	default:
		return err
	}
}
