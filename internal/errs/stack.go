package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// stackTracer is implemented by pkg/errors values and by AppError.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// captureStack records the current goroutine's stack, dropping captureStack
// itself and skip further frames.
func captureStack(skip int) errors.StackTrace {
	// errors.New records frames starting at its caller, i.e. here.
	st := errors.New("").(stackTracer).StackTrace()

	skip++
	if skip >= len(st) {
		return nil
	}
	return st[skip:]
}

// formatStack renders "<name>: <message>" followed by one
// "function\n\tfile:line" entry per frame.
func formatStack(name, message string, st errors.StackTrace) string {
	head := name + ": " + message
	if len(st) == 0 {
		return head
	}
	return head + fmt.Sprintf("%+v", st)
}
