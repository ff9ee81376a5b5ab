package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogFormat selects the logrus formatter
type LogFormat string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

// NewLogger creates a logrus logger writing to output (stderr when nil).
// Unknown levels fall back to info.
func NewLogger(level string, format LogFormat, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(output)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	switch format {
	case JSONFormat:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// ParseLogFormat validates a log format name. Empty means text.
func ParseLogFormat(s string) (LogFormat, error) {
	switch LogFormat(strings.ToLower(s)) {
	case "", TextFormat:
		return TextFormat, nil
	case JSONFormat:
		return JSONFormat, nil
	default:
		return "", fmt.Errorf("unsupported log format %q (want text or json)", s)
	}
}

type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithLogger stores a request scoped log entry in the context
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// LoggerFromContext returns the entry stored by WithLogger, or one on the
// standard logger. The request ID is attached when present.
func LoggerFromContext(ctx context.Context) *logrus.Entry {
	entry, ok := ctx.Value(loggerKey).(*logrus.Entry)
	if !ok {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		if _, set := entry.Data["request_id"]; !set {
			entry = entry.WithField("request_id", requestID)
		}
	}
	return entry
}
