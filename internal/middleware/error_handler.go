package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/errfunnel/internal/errs"
	"github.com/deppfellow/errfunnel/internal/logger"
	"github.com/deppfellow/errfunnel/internal/sqlerr"
)

// Messages disclosed in production for non-operational failures.
const (
	GenericAPIMessage  = "Something went very wrong!"
	GenericPageTitle   = "Something went wrong!"
	GenericPageMessage = "Please try again later."
)

// ErrorHandlerConfig is fixed when the handler is built. Nothing is read from
// the environment per request.
type ErrorHandlerConfig struct {
	// Sink receives one diagnostic line per handled error. Nil means stderr.
	Sink logger.Sink

	// IsProduction hides stacks and non-operational messages from clients.
	IsProduction bool

	// APIPrefix selects JSON responses in production. Defaults to "/api".
	APIPrefix string

	// ErrorView is the template rendered for non-API requests in
	// production. Defaults to "error".
	ErrorView string
}

// devBody is the full diagnostic response sent outside production.
type devBody struct {
	Error errs.Description `json:"error"`
	Stack string           `json:"stack"`
}

// apiBody is the only shape API callers see in production.
type apiBody struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// reply is what the handler decided to send. Exactly one of body or view is
// used.
type reply struct {
	status int
	body   any
	view   string
	locals map[string]any
}

type errorFunnel struct {
	cfg ErrorHandlerConfig
}

func newErrorFunnel(cfg ErrorHandlerConfig) *errorFunnel {
	if cfg.Sink == nil {
		cfg.Sink = logger.NewStderrSink()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	if cfg.ErrorView == "" {
		cfg.ErrorView = "error"
	}
	return &errorFunnel{cfg: cfg}
}

// NewErrorHandler builds the terminal error handler to install as
// echo.Echo.HTTPErrorHandler.
//
// Every call classifies err, writes a single "💥 <stack>" line to the sink
// and answers the request:
//   - outside production: JSON {error, stack} at the error's status code.
//   - production API request: {status, message, statusCode} for operational
//     errors (cast errors are first sanitized into a 400), a generic 500
//     otherwise.
//   - production page request: the error view with title, msg and
//     statusCode.
//
// The handler never panics and never writes to a committed response.
func NewErrorHandler(cfg ErrorHandlerConfig) echo.HTTPErrorHandler {
	return newErrorFunnel(cfg).handle
}

func (f *errorFunnel) handle(err error, c echo.Context) {
	failure := Resolve(err)

	f.cfg.Sink.Error("💥 " + failure.Stack())

	if c.Response().Committed {
		return
	}

	f.write(c, f.decide(c, failure))
}

// status reports the HTTP status the handler answers err with.
func (f *errorFunnel) status(err error, c echo.Context) int {
	return f.decide(c, Resolve(err)).status
}

// decide picks the response for failure without writing anything.
//
// The description is normalised first (missing status code becomes 500,
// missing status becomes "error"), then any status code net/http cannot
// write is replaced by 500. Sanitize is a separate step that only happens in
// production: it swaps a CastError for a fresh 400 AppError, so the path and
// value reach the client but the cause and stack never do.
func (f *errorFunnel) decide(c echo.Context, failure errs.Failure) reply {
	desc := writable(failure.Describe().Normalized())

	if !f.cfg.IsProduction {
		return reply{
			status: desc.StatusCode,
			body:   devBody{Error: desc, Stack: failure.Stack()},
		}
	}

	if castErr, ok := failure.(*errs.CastError); ok {
		desc = castErr.Sanitize().Describe()
	}

	if f.isAPIRequest(c) {
		if desc.IsOperational {
			return reply{
				status: desc.StatusCode,
				body:   apiBody{Status: desc.Status, Message: desc.Message, StatusCode: desc.StatusCode},
			}
		}
		return reply{
			status: http.StatusInternalServerError,
			body: apiBody{
				Status:     errs.StatusError,
				Message:    GenericAPIMessage,
				StatusCode: http.StatusInternalServerError,
			},
		}
	}

	msg := desc.Message
	if !desc.IsOperational {
		msg = GenericPageMessage
	}
	return reply{
		status: desc.StatusCode,
		view:   f.cfg.ErrorView,
		locals: map[string]any{
			"title":      GenericPageTitle,
			"msg":        msg,
			"statusCode": desc.StatusCode,
		},
	}
}

// writable maps status codes outside 100..599 onto a 500 "error". AppError
// accepts any status code, but WriteHeader panics on codes it cannot send.
func writable(desc errs.Description) errs.Description {
	if desc.StatusCode < 100 || desc.StatusCode > 599 {
		desc.StatusCode = http.StatusInternalServerError
		desc.Status = errs.StatusError
	}
	return desc
}

func (f *errorFunnel) write(c echo.Context, r reply) {
	if r.view == "" {
		if err := c.JSON(r.status, r.body); err != nil && !c.Response().Committed {
			writeFallbackJSON(c, r)
		}
		return
	}

	if err := c.Render(r.status, r.view, r.locals); err != nil {
		if c.Response().Committed {
			return
		}
		_ = c.String(r.status, fmt.Sprintf("%v %v", r.locals["title"], r.locals["msg"]))
	}
}

// writeFallbackJSON answers when the body could not be encoded, e.g. a NaN
// or a channel in Details. Only Code, Details and Value can carry such
// values, so the full object is resent without them.
func writeFallbackJSON(c echo.Context, r reply) {
	if dev, ok := r.body.(devBody); ok {
		dev.Error.Code, dev.Error.Details, dev.Error.Value = nil, nil, nil
		if err := c.JSON(r.status, dev); err == nil || c.Response().Committed {
			return
		}
	}
	_ = c.String(r.status, http.StatusText(r.status))
}

// isAPIRequest is a plain prefix match, so "/apiary" counts as an API path
// for the default "/api" prefix.
func (f *errorFunnel) isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, f.cfg.APIPrefix)
}

// Resolve maps any error reaching the HTTP layer onto errs.Failure.
//
// Application errors pass through. Echo's own errors become operational for
// 4xx (an unknown route is "Route not found") and unknown otherwise. Other
// errors go through sqlerr so driver failures get their proper shape.
func Resolve(err error) errs.Failure {
	var (
		appErr  *errs.AppError
		castErr *errs.CastError
	)
	if errors.As(err, &castErr) || errors.As(err, &appErr) {
		return errs.Classify(err)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return fromEchoError(echoErr)
	}

	return errs.Classify(sqlerr.HandleError(err))
}

func fromEchoError(echoErr *echo.HTTPError) errs.Failure {
	if echoErr.Code == http.StatusNotFound {
		return errs.NewNotFoundError("Route not found", nil)
	}

	if echoErr.Code >= 400 && echoErr.Code < 500 {
		message, ok := echoErr.Message.(string)
		if !ok || message == "" {
			message = http.StatusText(echoErr.Code)
		}
		code := errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code))
		return errs.NewAppError(message, echoErr.Code, nil, "", code)
	}

	return &errs.UnknownError{Raw: echoErr, StatusCode: echoErr.Code}
}
