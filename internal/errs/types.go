package errs

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Status values sent to clients next to the numeric status code.
const (
	// StatusFail marks client-side failures (4xx).
	StatusFail = "fail"

	// StatusError marks everything else.
	StatusError = "error"
)

const (
	// DefaultStatusCode is used by NewAppError when no status code is given.
	DefaultStatusCode = http.StatusBadRequest

	// DefaultName labels AppErrors created without an explicit name.
	DefaultName = "App Error"

	// CastErrorName is the name marker carried by every CastError.
	CastErrorName = "CastError"

	// UnknownErrorName labels foreign errors.
	UnknownErrorName = "Error"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Failure is the closed set of error shapes the terminal handler understands.
// It is implemented by *AppError, *CastError and *UnknownError only.
type Failure interface {
	error

	// Describe returns the full diagnostic view of the failure, as stored.
	// Use Description.Normalized before sending it anywhere.
	Describe() Description

	// Stack returns the captured call stack as text, or the string form of
	// the error when no stack is available.
	Stack() string

	failure()
}

// Description is the flattened, serialisable view of a Failure.
//
// It is the "full error object" returned to developers outside production.
type Description struct {
	Message       string `json:"message"`
	StatusCode    int    `json:"statusCode"`
	Status        string `json:"status"`
	IsOperational bool   `json:"isOperational"`
	Name          string `json:"name"`
	Code          any    `json:"code,omitempty"`
	Details       any    `json:"details,omitempty"`
	Path          string `json:"path,omitempty"`
	Value         any    `json:"value,omitempty"`
}

// Normalized returns a copy with a 500 status code and an "error" status
// filled in where they are missing.
func (d Description) Normalized() Description {
	if d.StatusCode == 0 {
		d.StatusCode = http.StatusInternalServerError
	}
	if d.Status == "" {
		d.Status = StatusError
	}
	return d
}

// StatusFor derives the client status for an HTTP status code:
// "fail" when its decimal form starts with 4, "error" otherwise.
func StatusFor(statusCode int) string {
	if strings.HasPrefix(strconv.Itoa(statusCode), "4") {
		return StatusFail
	}
	return StatusError
}

// ---------------------------------------------------------------------------
// AppError

// AppError is an operational error: an anticipated failure raised by
// application code whose message may be shown to callers.
type AppError struct {
	Message       string `json:"message"`
	StatusCode    int    `json:"statusCode"`
	Status        string `json:"status"`
	IsOperational bool   `json:"isOperational"`
	Name          string `json:"name"`

	// Code is an optional machine-readable discriminator (string or int),
	// e.g. a SQLSTATE or "USER_ALREADY_EXISTS".
	Code any `json:"code,omitempty"`

	// Details holds optional structured diagnostics, e.g. []FieldError.
	Details any `json:"details,omitempty"`

	stack errors.StackTrace
}

// NewAppError builds an operational error.
//
// A zero statusCode means "not given" and defaults to 400. Status is derived
// from the effective status code, so NewAppError(msg, 0, ...) is a "fail".
// An empty name defaults to "App Error". The call stack of the caller is
// captured for diagnostics.
func NewAppError(message string, statusCode int, details any, name string, code any) *AppError {
	return newAppError(1, message, statusCode, details, name, code)
}

func newAppError(skip int, message string, statusCode int, details any, name string, code any) *AppError {
	if statusCode == 0 {
		statusCode = DefaultStatusCode
	}
	if name == "" {
		name = DefaultName
	}

	return &AppError{
		Message:       message,
		StatusCode:    statusCode,
		Status:        StatusFor(statusCode),
		IsOperational: true,
		Name:          name,
		Code:          code,
		Details:       details,
		stack:         captureStack(skip + 1),
	}
}

func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is also an *AppError. It does not compare fields.
func (e *AppError) Is(target error) bool {
	_, ok := target.(*AppError)
	return ok
}

// StackTrace exposes the captured frames in the pkg/errors format so zerolog
// and New Relic can render them.
func (e *AppError) StackTrace() errors.StackTrace {
	return e.stack
}

func (e *AppError) Stack() string {
	return formatStack(e.Name, e.Message, e.stack)
}

func (e *AppError) Describe() Description {
	return Description{
		Message:       e.Message,
		StatusCode:    e.StatusCode,
		Status:        e.Status,
		IsOperational: e.IsOperational,
		Name:          e.Name,
		Code:          e.Code,
		Details:       e.Details,
	}
}

// WithMessage returns a copy of e with Message replaced.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

func (*AppError) failure() {}

// ---------------------------------------------------------------------------
// CastError

// CastError reports a client-supplied value that could not be converted to
// the type expected at Path (a route param, a column, a JSON field).
type CastError struct {
	Path  string `json:"path"`
	Value any    `json:"value"`

	// Kind names the target type, e.g. "uuid". Optional.
	Kind string `json:"kind,omitempty"`

	cause error
	stack errors.StackTrace
}

// NewCastError builds a CastError. cause may be nil.
func NewCastError(path string, value any, kind string, cause error) *CastError {
	return &CastError{
		Path:  path,
		Value: value,
		Kind:  kind,
		cause: cause,
		stack: captureStack(1),
	}
}

func (e *CastError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("Cast to %s failed for value %q at path %q", e.Kind, fmt.Sprint(e.Value), e.Path)
	}
	return fmt.Sprintf("Cast failed for value %q at path %q", fmt.Sprint(e.Value), e.Path)
}

func (e *CastError) Unwrap() error {
	return e.cause
}

func (e *CastError) Stack() string {
	return formatStack(CastErrorName, e.Error(), e.stack)
}

// Describe has no status code: a cast error that is not sanitized is
// reported as an internal failure.
func (e *CastError) Describe() Description {
	return Description{
		Message: e.Error(),
		Name:    CastErrorName,
		Path:    e.Path,
		Value:   e.Value,
	}
}

// Sanitize builds a fresh operational 400 error describing the bad value.
// Nothing from the original error other than Path and Value is carried over.
func (e *CastError) Sanitize() *AppError {
	message := fmt.Sprintf("Invalid %s: %v.", e.Path, e.Value)
	return newAppError(1, message, http.StatusBadRequest, nil, "", nil)
}

func (*CastError) failure() {}

// ---------------------------------------------------------------------------
// UnknownError

// UnknownError wraps an error that was not raised through this package:
// programming defects, driver failures, framework errors.
type UnknownError struct {
	Raw error

	// StatusCode is set when the origin knows the HTTP status (e.g. a
	// framework error). Zero means unknown.
	StatusCode int
}

func (e *UnknownError) Error() string {
	if e.Raw == nil {
		return "unknown error"
	}
	return e.Raw.Error()
}

func (e *UnknownError) Unwrap() error {
	return e.Raw
}

// Stack prefers a stack recorded anywhere in the wrapped chain
// (pkg/errors), falling back to the error string.
func (e *UnknownError) Stack() string {
	var st stackTracer
	if errors.As(e.Raw, &st) {
		return formatStack(UnknownErrorName, e.Error(), st.StackTrace())
	}
	return UnknownErrorName + ": " + e.Error()
}

func (e *UnknownError) Describe() Description {
	d := Description{
		Message:    e.Error(),
		StatusCode: e.StatusCode,
		Name:       UnknownErrorName,
	}
	if e.StatusCode != 0 {
		d.Status = StatusFor(e.StatusCode)
	}
	return d
}

func (*UnknownError) failure() {}

// ---------------------------------------------------------------------------

// Classify maps any error onto the closed Failure set.
//
// The first *CastError, *AppError or *UnknownError found in the chain wins,
// in that order. Anything else becomes an *UnknownError wrapping err.
func Classify(err error) Failure {
	if err == nil {
		return &UnknownError{}
	}

	var castErr *CastError
	if errors.As(err, &castErr) {
		return castErr
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var unknownErr *UnknownError
	if errors.As(err, &unknownErr) {
		return unknownErr
	}

	return &UnknownError{Raw: err}
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
