// Package validation provides custom validation rules for the application.
package validation

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/nationalid/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// FieldNames returns the sorted names of the fields that failed in a validation.Errors value.
// Any other error yields nil.
func FieldNames(err error) []string {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	names := make([]string, 0, len(fieldErrs))
	for name, fieldErr := range fieldErrs {
		if fieldErr != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// SecretCharset validates that a caller-chosen secret only holds visible ASCII characters.
var SecretCharset = validation.NewStringRuleWithError(
	func(s string) bool {
		for i := 0; i < len(s); i++ {
			if s[i] < '!' || s[i] > '~' {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_secret_charset", "must only contain visible ASCII characters"),
)
