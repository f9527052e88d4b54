// AngelaMos | 2026
// validator.go

package core

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NewValidator returns the request validator with the platform's
// custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Never errors for a non-nil func.
	_ = v.RegisterValidation("username", validUsername)

	return v
}

func validUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}
