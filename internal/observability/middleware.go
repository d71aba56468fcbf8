package observability

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RequestLogging tags every request with a fresh request id, logs its
// arrival, and makes the request-scoped log entry available to handlers via
// the request context.
func RequestLogging(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			entry := log.WithFields(logrus.Fields{
				"requestId": uuid.New().String(),
				"method":    req.Method,
				"path":      req.URL.Path,
			})
			entry.Info("incoming request")
			next.ServeHTTP(res, req.WithContext(WithLogger(req.Context(), entry)))
		})
	}
}
