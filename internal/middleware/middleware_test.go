package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/errfunnel/internal/config"
	"github.com/deppfellow/errfunnel/internal/errs"
	"github.com/deppfellow/errfunnel/internal/server"
)

func newTestServer(t *testing.T, buf *bytes.Buffer, mutate func(*config.Config)) *server.Server {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	log := zerolog.New(buf)

	s, err := server.New(cfg, &log, nil)
	require.NoError(t, err)
	return s
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"generated when missing", "", false},
		{"reused when sane", "req-123", true},
		{"replaced when it has spaces", "a b", false},
		{"replaced when oversized", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			err := RequestID()(func(c echo.Context) error {
				seen = GetRequestID(c)
				return nil
			})(c)
			require.NoError(t, err)

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.reused {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestGetLogger_FallsBackToNop(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	require.NotNil(t, GetLogger(c))
	require.NotNil(t, LoggerFromContext(c.Request().Context()))
}

func TestEnhanceContext(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, &buf, nil)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/echo", nil), httptest.NewRecorder())
	c.Set(RequestIDKey, "req-1")

	err := NewContextEnhancer(s).EnhanceContext()(func(c echo.Context) error {
		LoggerFromContext(c.Request().Context()).Info().Msg("inside")
		return nil
	})(c)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"method":"GET"`)
	assert.Same(t, GetLogger(c), LoggerFromContext(c.Request().Context()))
}

// End to end through Echo: the global error handler, the request logger and
// the rate limiter agree on the status they report.
func TestGlobalMiddlewares_EndToEnd(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, &buf, func(cfg *config.Config) {
		cfg.Primary.Env = config.EnvProduction
		cfg.Server.RateLimit = 1
	})
	m := NewMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = m.Global.ErrorHandler()
	e.Use(RequestID(), m.ContextEnhancer.EnhanceContext(), m.Global.RequestLogger())

	api := e.Group("/api", m.RateLimit.Limit())
	api.GET("/missing", func(c echo.Context) error {
		return errs.NewNotFoundError("Thing not found", nil)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Thing not found","statusCode":404}`, rec.Body.String())
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), "💥 App Error: Thing not found")

	// The burst of a 1 rps limiter is 1, so the next call is rejected.
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"status":"fail","message":"Too many requests, please try again later.","statusCode":429}`, rec.Body.String())
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, &buf, nil)

	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewRateLimitMiddleware(s).Limit())

	for range 5 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
