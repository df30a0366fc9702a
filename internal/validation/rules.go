// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/sealedrecords/internal/errors"
)

// MaxIdentifierLength bounds record and party identifiers.
const MaxIdentifierLength = 128

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9._:@\-]+$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Identifier validates record and party identifiers: letters, digits and the
// characters . _ : @ - only, at most MaxIdentifierLength long. Empty strings pass so
// Required can decide.
var Identifier = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_identifier_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if len(s) > MaxIdentifierLength {
		return validation.NewError("validation_identifier_length", "must be at most 128 characters")
	}
	if !identifierRegex.MatchString(s) {
		return validation.NewError(
			"validation_identifier_format",
			"must contain only letters, digits and . _ : @ -",
		)
	}
	return nil
})

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
