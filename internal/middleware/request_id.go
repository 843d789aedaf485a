package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"store-admin-service/internal/backend"
)

var requestIDHeaders = []string{"X-Request-Id", "X-Correlation-Id"}

// RequestID echoes or mints a request id and carries it into the context so
// backend calls made for this request forward the same id.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := readRequestID(r)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			r.Header.Set("X-Request-Id", requestID)
			w.Header().Set("X-Request-Id", requestID)
			ctx := backend.WithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func readRequestID(r *http.Request) string {
	for _, key := range requestIDHeaders {
		if value := strings.TrimSpace(r.Header.Get(key)); value != "" {
			return value
		}
	}
	return ""
}
