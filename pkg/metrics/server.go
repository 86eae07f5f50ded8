package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes liveness, readiness and prometheus scrape endpoints on a
// port separate from the chat surface.
type Server struct {
	addr   string
	logger *slog.Logger
}

// NewServer creates a new metrics server listening on addr.
func NewServer(addr string, logger *slog.Logger) (result *Server) {
	result = &Server{
		addr:   addr,
		logger: logger,
	}

	return result
}

// Start runs the metrics server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) (err error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.LivenessHandler)
	mux.HandleFunc("/readyz", s.ReadinessHandler)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.InfoContext(ctx, "starting metrics server", slog.String("address", s.addr))

		startErr := server.ListenAndServe()
		if startErr != nil && startErr != http.ErrServerClosed {
			s.logger.ErrorContext(ctx, "metrics server error", slog.String("error", startErr.Error()))
		}
	}()

	<-ctx.Done()

	s.logger.InfoContext(ctx, "shutting down metrics server")

	err = server.Shutdown(context.Background())
	if err != nil {
		err = fmt.Errorf("shutting down metrics server: %w", err)
		return err
	}

	return err
}

// LivenessHandler handles liveness probe requests.
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler handles readiness probe requests.
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
