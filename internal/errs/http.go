package errs

import (
	"net/http"
)

// defaultCode turns the status text of statusCode into a stable code,
// e.g. 404 -> "NOT_FOUND".
func defaultCode(statusCode int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(statusCode))
}

// codeOr returns code, or the default code of statusCode when code is nil.
func codeOr(code any, statusCode int) any {
	if code == nil {
		return defaultCode(statusCode)
	}
	return code
}

// NewBadRequestError creates a 400 AppError.
//
// code defaults to "BAD_REQUEST"; details may carry []FieldError.
func NewBadRequestError(message string, code any, details any) *AppError {
	return newAppError(1, message, http.StatusBadRequest, details, "", codeOr(code, http.StatusBadRequest))
}

// NewValidationError creates a 400 AppError whose details are the
// field-level errors.
func NewValidationError(fieldErrors []FieldError) *AppError {
	return newAppError(1, "Validation failed", http.StatusBadRequest, fieldErrors, "ValidationError", defaultCode(http.StatusBadRequest))
}

// NewUnauthorizedError creates a 401 AppError.
func NewUnauthorizedError(message string) *AppError {
	return newAppError(1, message, http.StatusUnauthorized, nil, "", defaultCode(http.StatusUnauthorized))
}

// NewForbiddenError creates a 403 AppError.
func NewForbiddenError(message string) *AppError {
	return newAppError(1, message, http.StatusForbidden, nil, "", defaultCode(http.StatusForbidden))
}

// NewNotFoundError creates a 404 AppError. code defaults to "NOT_FOUND".
func NewNotFoundError(message string, code any) *AppError {
	return newAppError(1, message, http.StatusNotFound, nil, "", codeOr(code, http.StatusNotFound))
}

// NewConflictError creates a 409 AppError. code defaults to "CONFLICT".
func NewConflictError(message string, code any) *AppError {
	return newAppError(1, message, http.StatusConflict, nil, "", codeOr(code, http.StatusConflict))
}

// NewInternalServerError creates an operational 500 whose message is the
// generic status text. Use it when the failure is expected but nothing more
// specific can be said; unexpected failures should stay plain errors.
func NewInternalServerError() *AppError {
	return newAppError(1, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError, nil, "", defaultCode(http.StatusInternalServerError))
}
