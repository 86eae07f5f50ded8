// Package api exposes the chat backend over HTTP: the /api/v1/chat turn
// endpoint, health probes, CORS, and an optional authentication chain.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmmm144/ai-agent/pkg/api/auth"
	"github.com/mmmm144/ai-agent/pkg/chat"
)

// serviceName is reported by the health endpoints.
const serviceName = "vnstock-agent"

// TurnRunner runs one conversational turn to completion. Implemented by
// *chat.Orchestrator; declared here so handler tests can script turns.
type TurnRunner interface {
	RunTurn(ctx context.Context, userID string, sessionID string, message string) chat.TurnResult
}

// Server is the public chat API server.
type Server struct {
	runner     TurnRunner
	authChain  *auth.Chain
	logger     *slog.Logger
	origins    []string
	httpServer *http.Server
}

// NewServer creates the chat API server listening on addr. corsOrigins
// lists the allowed origins ("*" allows any); authChain can be nil to
// leave the API open.
func NewServer(runner TurnRunner, addr string, corsOrigins []string, authChain *auth.Chain, logger *slog.Logger) (result *Server) {
	result = &Server{
		runner:    runner,
		authChain: authChain,
		logger:    logger,
		origins:   corsOrigins,
	}

	result.httpServer = &http.Server{
		Addr:              addr,
		Handler:           result.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return result
}

// Handler returns the routed handler, for mounting on an httptest server.
func (s *Server) Handler() (result http.Handler) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/chat", s.handleChat)

	result = corsMiddleware(s.origins, mux)
	return result
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) (err error) {
	s.logger.InfoContext(ctx, "starting chat API server", slog.String("addr", s.httpServer.Addr))

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	err = nil
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) (err error) {
	s.logger.InfoContext(ctx, "shutting down chat API server")

	err = s.httpServer.Shutdown(ctx)
	return err
}
