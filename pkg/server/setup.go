package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server owns the HTTP listener serving the catalog API.
type Server struct {
	cfg    Config
	logger Logger
	srv    *http.Server
}

// NewServer builds the server around the API routes, wrapped with
// observability middleware and otel instrumentation.
func NewServer(cfg Config, api *API, metrics Metrics, logger Logger) *Server {
	cfg = cfg.withDefaults()

	handler := withObservability(api.Routes(), metrics, logger)
	handler = otelhttp.NewHandler(handler, "evalhub-http")

	return &Server{
		cfg:    cfg,
		logger: logger,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Start begins serving in a background goroutine. Listener failures after
// startup are logged; the fx lifecycle handles the initial bind error via
// the returned channel staying empty.
func (s *Server) Start() {
	s.logger.Info("http server listening", nil, map[string]interface{}{
		"addr": s.srv.Addr,
	})

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("http server failed", err, map[string]interface{}{
				"addr": s.srv.Addr,
			})
		}
	}()
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
