package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = validate.RegisterValidation("finite", func(field validator.FieldLevel) bool {
		value := field.Field()
		if value.Kind() == reflect.Pointer {
			if value.IsNil() {
				return true
			}
			value = value.Elem()
		}
		switch value.Kind() {
		case reflect.Float32, reflect.Float64:
			return isFinite(value.Float())
		default:
			return true
		}
	})
	return validate
}

// ValidationError names the first field that failed its rule.
type ValidationError struct {
	Field string
	Rule  string
	Param string
}

func (err *ValidationError) Error() string {
	switch err.Rule {
	case "required":
		return fmt.Sprintf("%s is required", err.Field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", err.Field, err.Param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field, err.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field, strings.ReplaceAll(err.Param, " ", ", "))
	case "finite":
		return fmt.Sprintf("%s must be a finite number", err.Field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field, err.Param)
	default:
		return fmt.Sprintf("%s is invalid", err.Field)
	}
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func ValidateInput(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return &ValidationError{Field: first.Field(), Rule: first.Tag(), Param: first.Param()}
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
