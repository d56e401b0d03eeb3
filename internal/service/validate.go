package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared because validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts the first
// failure into a *ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	isList := fe.Kind() == reflect.Slice

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "email":
		msg = field + " must be a valid email address"
	case "min":
		if isList {
			msg = fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
	case "max":
		if isList {
			msg = fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		} else {
			msg = fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
		}
	default:
		msg = field + " is invalid"
	}

	return newValidationError(field, msg)
}
