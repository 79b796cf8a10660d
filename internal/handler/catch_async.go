package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatchAsync runs fn with the same context and forwards whatever it fails
// with to Echo's error handler: a returned error as is, a panic as an error
// carrying the stack of the panic site.
//
// A recovered error value keeps its identity, so a panicking *errs.AppError
// is still answered as that AppError. Any other value becomes a
// non-operational error. http.ErrAbortHandler is re-raised for net/http.
func CatchAsync(fn echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			err = fromPanic(r)
		}()

		return fn(c)
	}
}

func fromPanic(r any) error {
	if e, ok := r.(error); ok {
		return errors.WithStack(e)
	}
	return errors.Errorf("panic: %v", r)
}
