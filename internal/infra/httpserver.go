package infra

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"time"
)

// HTTPServer serves the API outside Lambda.
type HTTPServer struct {
	server *http.Server
	logger Logger
}

// NewHTTPServer builds a server on cfg.Port. Errors from net/http itself go to logger.
func NewHTTPServer(cfg *Config, handler http.Handler, logger Logger) *HTTPServer {
	httpLogger := logger.With().Str("component", "http_server").Logger()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ErrorLog:          stdlog.New(httpLogger, "", 0),
	}

	return &HTTPServer{server: srv, logger: logger}
}

// Addr is the listen address.
func (s *HTTPServer) Addr() string {
	if s.server == nil {
		return ""
	}
	return s.server.Addr
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *HTTPServer) Start() error {
	if s.server == nil {
		return nil
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info().Msg("API shutting down")
	return s.server.Shutdown(ctx)
}
