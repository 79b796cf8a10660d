// Package validation binds and validates request data.
//
// It uses the `validator` library to enforce rules (like required fields or
// email formats) defined in struct tags and turns failures into errs values
// the terminal error handler understands.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/errfunnel/internal/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validatable is implemented by request payload types that know how to
// validate themselves, usually by calling Struct.
type Validatable interface {
	Validate() error
}

// Struct runs the tag-based validator on v.
func Struct(v any) error {
	return validate.Struct(v)
}

// CustomValidationError represents a validation issue that cannot be
// expressed with validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is returned from Validate for custom rules.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
//   - a path/query value that cannot be converted becomes *errs.CastError.
//   - other bind failures keep Echo's 4xx status and message.
//   - validation failures become errs.NewValidationError with field details.
//
// payload must be a pointer so c.Bind can populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return BindError(err)
	}

	if err := payload.Validate(); err != nil {
		return errs.NewValidationError(extractValidationError(err))
	}

	return nil
}

// BindError converts an Echo binding failure into an errs value. Use it with
// Echo's fluent binders (echo.QueryParamsBinder and friends).
func BindError(err error) error {
	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		var value string
		if len(bindingErr.Values) > 0 {
			value = bindingErr.Values[0]
		}
		return errs.NewCastError(bindingErr.Field, value, "", err)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code >= 400 && httpErr.Code < 500 {
		message, ok := httpErr.Message.(string)
		if !ok || message == "" {
			message = http.StatusText(httpErr.Code)
		}
		return errs.NewAppError(message, httpErr.Code, nil, "", errs.MakeUpperCaseWithUnderscores(http.StatusText(httpErr.Code)))
	}

	return errs.NewBadRequestError("Invalid request", nil, nil)
}

func extractValidationError(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, e := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())

		case "email":
			msg = "must be a valid email address"

		case "uuid", "uuid4":
			msg = "must be a valid UUID"

		case "dive":
			msg = "some items are invalid"

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, fe.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return fieldErrors
}
