// Package validation checks user-supplied input against fixed rules.
package validation

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/samplecodes/testkata/internal/apperr"
)

// Username length bounds, counted in characters.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
)

// Username validation errors, one per rule.
var (
	ErrRequired          = apperr.New(apperr.KindValidation, "username is required")
	ErrTooShort          = apperr.New(apperr.KindValidation, "username must be at least 3 characters")
	ErrTooLong           = apperr.New(apperr.KindValidation, "username must be at most 20 characters")
	ErrInvalidCharacters = apperr.New(apperr.KindValidation, "username may only contain letters, digits and underscores")
)

// usernameRules is evaluated left to right and stops at the first failing tag.
const usernameRules = "required,min=3,max=20,username_chars"

var usernameChars = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernameChars.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateUsername returns nil if name is 3 to 20 characters from [A-Za-z0-9_].
// Otherwise it returns the error for the first rule that fails, in the order
// required, too short, too long, invalid characters.
func ValidateUsername(name string) error {
	err := validate.Var(name, usernameRules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	switch verrs[0].Tag() {
	case "required":
		return ErrRequired
	case "min":
		return ErrTooShort
	case "max":
		return ErrTooLong
	default:
		return ErrInvalidCharacters
	}
}
