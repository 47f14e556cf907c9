package logger

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

// RequestIDHeader is set on every outbound request so backend logs can be matched with client logs.
const RequestIDHeader = "X-Request-ID"

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger with the specified log level writing to w.
// Uses colourised text for the dev environment otherwise output is JSON.
func NewLogger(w io.Writer, logLevel slog.Level, environment string) *slog.Logger {
	if environment == "dev" {
		return slog.New(
			tint.NewHandler(w, &tint.Options{
				Level:      logLevel,
				TimeFormat: time.Kitchen,
			}),
		)
	}
	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: logLevel,
		}))
}

// Transport is an http.RoundTripper that tags each request with a request id and logs its outcome.
//
// Completed requests are logged at info, 4xx responses at warn, 5xx responses and network failures at error.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil) with request logging.
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		// RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	res, err := t.Base.RoundTrip(req)
	duration := time.Since(start)

	logAttrs := []slog.Attr{
		slog.String("type", "HTTP"),
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("path", req.URL.Path),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		t.Logger.LogAttrs(req.Context(), slog.LevelError, "request failed", logAttrs...)
		return nil, err
	}

	logAttrs = append(logAttrs,
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", duration),
	)

	switch {
	case res.StatusCode >= 500:
		t.Logger.LogAttrs(req.Context(), slog.LevelError, "request completed", logAttrs...)
	case res.StatusCode >= 400:
		t.Logger.LogAttrs(req.Context(), slog.LevelWarn, "request completed", logAttrs...)
	default:
		t.Logger.LogAttrs(req.Context(), slog.LevelInfo, "request completed", logAttrs...)
	}

	return res, nil
}
