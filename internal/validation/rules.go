// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Base64 validates that a string is valid base64-encoded data.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})

// RFC3339Time validates that a string parses as an RFC 3339 timestamp.
var RFC3339Time = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_rfc3339_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return validation.NewError("validation_rfc3339", "must be a valid RFC 3339 timestamp")
	}
	return nil
})

// OneOf builds a rule validating that a string is one of the allowed values.
func OneOf(allowed ...string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_one_of_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return validation.NewError(
			"validation_one_of",
			"must be one of: "+strings.Join(allowed, ", "),
		)
	})
}
