package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"vto/internal/http/handlers"
)

func TestRoutes(t *testing.T) {
	app := handlers.NewApp(handlers.Options{})
	h := NewRouter(app, RouterOptions{AllowedOrigins: []string{"*"}, DefaultLocale: "en", Logger: zerolog.Nop()})

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{method: http.MethodGet, path: "/", status: http.StatusOK},
		{method: http.MethodGet, path: "/health", status: http.StatusOK},
		{method: http.MethodGet, path: "/utils/get/objectname?group_id=g&user_id=u", status: http.StatusOK},
		{method: http.MethodPost, path: "/vto/nova/model", body: `{}`, status: http.StatusUnprocessableEntity},
		{method: http.MethodPost, path: "/vto/nova/process", body: `{}`, status: http.StatusUnprocessableEntity},
		{method: http.MethodPost, path: "/vto/nova/background", body: `{}`, status: http.StatusUnprocessableEntity},
		{method: http.MethodPost, path: "/vto/nova/edit", body: `{}`, status: http.StatusUnprocessableEntity},
		{method: http.MethodGet, path: "/vto/nova/model", status: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/nope", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatalf("missing X-Request-ID")
			}
		})
	}
}
