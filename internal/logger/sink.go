package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Sink receives the single diagnostic line the terminal error handler emits
// per failed request.
type Sink interface {
	Error(msg string)
}

type zerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink writes diagnostics as error-level events of logger.
func NewZerologSink(logger zerolog.Logger) Sink {
	return &zerologSink{logger: logger}
}

// NewStderrSink is the fallback used when no sink is configured.
func NewStderrSink() Sink {
	return &zerologSink{logger: zerolog.New(os.Stderr).With().Timestamp().Logger()}
}

func (s *zerologSink) Error(msg string) {
	s.logger.Error().Msg(msg)
}
