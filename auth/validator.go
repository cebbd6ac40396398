package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"chat-engine/errors"
)

var validate = validator.New()

// SignupRequest is validated before any cryptographic work: field
// rules through validator tags, password complexity by hand below.
type SignupRequest struct {
	Username string `validate:"required,min=3,max=80"`
	Email    string `validate:"required,email,max=120"`
	Password string `validate:"required,min=12,max=72"`
}

func ValidateSignup(req SignupRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
