package handler

import (
	"reflect"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/errfunnel/internal/errs"
	"github.com/deppfellow/errfunnel/internal/middleware"
	"github.com/deppfellow/errfunnel/internal/server"
	"github.com/deppfellow/errfunnel/internal/validation"
)

// Handler is the base handler type that holds shared application
// dependencies. Concrete handlers embed it.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc is a typed endpoint receiving a bound and validated request.
// Req is usually a pointer type so Echo's Bind can populate it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint with no response body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// ResponseHandler writes a successful result and names the operation for
// logs and traces.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// NoContentResponseHandler writes responses with no body.
type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result any) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

// handleRequest is the shared pipeline for all typed handlers: bind and
// validate, run the handler, log and trace each phase, write the response.
// Errors are returned untouched for the terminal error handler.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		errorEvent(&logger, err).
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// errorEvent logs expected failures at warn and everything else at error.
func errorEvent(logger *zerolog.Logger, err error) *zerolog.Event {
	if errs.Classify(err).Describe().IsOperational {
		return logger.Warn()
	}
	return logger.Error().Stack()
}

// Handle wraps a typed handler into an echo.HandlerFunc with binding,
// validation, logging, tracing and panic capture.
//
//	api.POST("/echo", handler.Handle(h.Handler, h.Create, http.StatusCreated, &CreateEchoRequest{}))
//
// req is a prototype: every request binds into a fresh copy of it.
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	req Req,
) echo.HandlerFunc {
	return CatchAsync(func(c echo.Context) error {
		return handleRequest(c, fresh(req), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	})
}

// HandleNoContent is Handle for endpoints that return no body.
func HandleNoContent[Req validation.Validatable](
	h Handler,
	handler HandlerFuncNoContent[Req],
	status int,
	req Req,
) echo.HandlerFunc {
	return CatchAsync(func(c echo.Context) error {
		return handleRequest(c, fresh(req), func(c echo.Context, req Req) (any, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	})
}

// fresh returns a new zero value of the type req points to, so concurrent
// requests never bind into a shared struct.
func fresh[Req any](req Req) Req {
	t := reflect.TypeOf(req)
	if t == nil || t.Kind() != reflect.Pointer {
		return req
	}
	return reflect.New(t.Elem()).Interface().(Req)
}
