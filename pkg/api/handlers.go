package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mmmm144/ai-agent/pkg/metrics"
	"github.com/mmmm144/ai-agent/pkg/ui"
)

// handleChat serves POST /api/v1/chat: validate the transcript, run one
// agent turn, classify the reply into rendering instructions and
// suggestions. Agent failures never surface as a 5xx here; the
// orchestrator already folded them into the reply text.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if s.authChain != nil {
		authResult, err := s.authChain.Authenticate(r)
		if err != nil {
			metrics.ChatRequestsTotal.WithLabelValues("unauthorized").Inc()
			s.logger.WarnContext(ctx, "chat request rejected by auth chain",
				slog.String("error", err.Error()))
			writeDetail(w, http.StatusUnauthorized, err.Error())
			return
		}

		s.logger.InfoContext(ctx, "chat request authenticated",
			slog.String("method", authResult.Method),
			slog.String("username", authResult.Username))
	}

	var request ChatRequest

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err = request.Validate()
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, sessionID := request.Identity()
	message := request.LastUserMessage().Content

	s.logger.InfoContext(ctx, "chat turn accepted",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
		slog.String("locale", request.Locale()),
		slog.Int("message_chars", len(message)))

	turn := s.runner.RunTurn(ctx, userID, sessionID, message)

	_, effects, suggestions := ui.Classify(turn.Reply, message)

	response := ChatResponse{
		Reply:              turn.Reply,
		UIEffects:          effects,
		SuggestionMessages: suggestions,
		RawAgentOutput:     &turn,
	}

	metrics.ChatRequestsTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "chat turn served",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
		slog.Int("reply_chars", len(turn.Reply)),
		slog.Int("ui_effects", len(effects)),
		slog.Int("suggestions", len(suggestions)))

	writeJSON(w, http.StatusOK, response)
}

// handleRoot serves the health document at the bare root. Any other
// unrouted path is a 404.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.handleHealth(w, r)
}

// handleHealth returns service health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	_ = encoder.Encode(v)
}

// writeDetail writes an error response in the {"detail": ...} envelope the
// web client expects.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
