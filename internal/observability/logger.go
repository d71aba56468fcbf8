package observability

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextKey int

const loggerKey contextKey = iota

// NewLogger builds the process-wide structured logger. JSON output keeps log
// aggregation happy in deployment; level defaults to info.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return log
}

// WithLogger stashes a request-scoped log entry in the context
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// LoggerFromContext retrieves the request-scoped log entry, falling back to
// the standard logger so callers never have to nil-check
func LoggerFromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
