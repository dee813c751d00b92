// ABOUTME: HTTP request logging middleware with correlation IDs.
// ABOUTME: Logs each outbound call with method, path, status, and latency.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID to the backend.
const RequestIDHeader = "X-Request-ID"

// Logging tags each request with a fresh X-Request-ID and logs it at debug
// level. Headers and bodies are never logged, so tokens stay out of logs.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			log := logger
			if log == nil {
				log = slog.Default()
			}

			start := time.Now()
			requestID := uuid.NewString()

			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, requestID)

			path := sanitizePath(r.URL.Path)
			resp, err := next.RoundTrip(r)
			if err != nil {
				log.Debug("Request failed",
					"request_id", requestID,
					"method", r.Method,
					"path", path,
					"latency_ms", time.Since(start).Milliseconds(),
					"error", err,
				)
				return resp, err
			}

			log.Debug("Request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", path,
				"status", resp.StatusCode,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		})
	}
}

// sanitizePath strips control characters so a crafted id cannot forge log lines.
func sanitizePath(path string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, path)
}
