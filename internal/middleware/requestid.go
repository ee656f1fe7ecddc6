package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"

	headerRequestID    = "X-Request-ID"
	headerAPIGatewayID = "X-Amzn-RequestId"
	maxRequestIDLen    = 128
)

// RequestID tags each HTTP call with an id, preferring the client's X-Request-ID,
// then the API Gateway id, then a fresh uuid. Accepted generation requests carry their own uid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := incomingRequestID(r)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		w.Header().Set(headerRequestID, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func incomingRequestID(r *http.Request) string {
	for _, h := range []string{headerRequestID, headerAPIGatewayID} {
		if v := r.Header.Get(h); validRequestID(v) {
			return v
		}
	}
	return ""
}

// validRequestID keeps ids safe to echo into headers and log lines.
func validRequestID(v string) bool {
	if v == "" || len(v) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return false
		}
	}
	return true
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
