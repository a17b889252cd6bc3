// Package validation wraps go-playground/validator for request and settings
// structs and turns its errors into short field messages.
package validation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// step=N: the integer must be a multiple of N
	_ = validate.RegisterValidation("step", func(fl validator.FieldLevel) bool {
		step, err := strconv.ParseInt(fl.Param(), 10, 64)
		if err != nil || step <= 0 {
			return false
		}
		return fl.Field().Int()%step == 0
	})
}

// Struct validates v using its struct tags
func Struct(v interface{}) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
}

// Error is a single field failure
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

// IsInvalid reports whether err carries a validation failure
func IsInvalid(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// First failure only
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return &Error{field, "field is required"}
		case "min":
			return &Error{field, "must be at least " + param}
		case "max":
			return &Error{field, "must not exceed " + param}
		case "oneof":
			return &Error{field, fmt.Sprintf("must be one of [%s]", param)}
		case "step":
			return &Error{field, "must be a multiple of " + param}
		case "dive":
			return &Error{field, "invalid element in array"}
		default:
			return &Error{field, fmt.Sprintf("validation failed (%s)", e.Tag())}
		}
	}
	return err
}
