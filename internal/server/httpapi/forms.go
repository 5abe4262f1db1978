package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Messages shown to users when a form is rejected.
const (
	msgAllFieldsRequired   = "All fields are required"
	msgPasswordsDontMatch  = "Passwords don't match"
	msgPasswordTooShort    = "Password must be at least 8 characters"
	msgAccountExists       = "An account with this email already exists"
	msgCredentialsRequired = "Email and password are required"
	msgInvalidCredentials  = "Invalid email or password"
	msgServiceUnavailable  = "Service temporarily unavailable"
	msgInternal            = "Something went wrong"
)

type loginForm struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type registerForm struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email" binding:"required"`
	Password        string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required,eqfield=Password"`
}

// namePtr maps an empty name to no name.
func (f *registerForm) namePtr() *string {
	if f.Name == "" {
		return nil
	}
	name := f.Name
	return &name
}

// registerMessage picks the single message to show for a rejected
// registerForm. Missing fields win over a mismatch, and a mismatch wins over
// a short password.
func registerMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgAllFieldsRequired
	}

	var mismatch, short bool
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return msgAllFieldsRequired
		case "eqfield":
			mismatch = true
		case "min":
			short = true
		}
	}

	switch {
	case mismatch:
		return msgPasswordsDontMatch
	case short:
		return msgPasswordTooShort
	default:
		return msgAllFieldsRequired
	}
}
