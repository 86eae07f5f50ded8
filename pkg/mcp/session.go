package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/mmmm144/ai-agent/pkg/metrics"
)

// SessionManager owns the negotiated streamable-http session with the
// remote tool server. The handle is created lazily on first use and cached
// for the process lifetime; the protocol has no logout. Caching is a plain
// check-then-set on an atomic pointer: concurrent first calls may each run a
// redundant handshake and the last writer wins, which is harmless because
// handles are interchangeable.
type SessionManager struct {
	httpClient *http.Client
	baseURL    string
	paths      []string
	logger     *slog.Logger
	session    atomic.Pointer[sessionState]
}

// sessionState is the captured outcome of one successful handshake.
type sessionState struct {
	id   string
	path string
}

// NewSessionManager creates a session manager for the server at baseURL.
// paths are the candidate endpoint suffixes probed in order.
func NewSessionManager(baseURL string, paths []string, httpClient *http.Client, logger *slog.Logger) (result *SessionManager) {
	result = &SessionManager{
		httpClient: httpClient,
		baseURL:    baseURL,
		paths:      paths,
		logger:     logger,
	}

	return result
}

// Ensure returns the session handle, performing the initialize handshake on
// first use. A failed handshake caches nothing, so the next call retries.
func (m *SessionManager) Ensure(ctx context.Context) (result string, err error) {
	if state := m.session.Load(); state != nil {
		result = state.id
		return result, err
	}

	state, err := m.handshake(ctx)
	if err != nil {
		metrics.MCPHandshakesTotal.WithLabelValues("error").Inc()
		err = fmt.Errorf("negotiating session: %w", err)
		return result, err
	}

	metrics.MCPHandshakesTotal.WithLabelValues("success").Inc()
	m.session.Store(state)

	m.logger.InfoContext(ctx, "negotiated MCP session",
		slog.String("session_id", state.id),
		slog.String("path", state.path))

	// One-way notification; the server expects it after initialize but a
	// failure here must not take the session down.
	m.notifyInitialized(ctx, state)

	result = state.id
	return result, err
}

// handshake sends the initialize request down the candidate-path list. A
// 404 advances to the next path; any other failure is terminal.
func (m *SessionManager) handshake(ctx context.Context) (result *sessionState, err error) {
	payload := Request{
		JSONRPC: jsonRPCVersion,
		ID:      1,
		Method:  methodInitialize,
		Params: map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    ClientName,
				"version": ClientVersion,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("encoding initialize request: %w", err)
		return result, err
	}

	for _, path := range m.paths {
		url := m.baseURL + path

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			err = fmt.Errorf("building initialize request: %w", reqErr)
			return result, err
		}

		setRPCHeaders(req, "")

		resp, doErr := m.httpClient.Do(req)
		if doErr != nil {
			err = fmt.Errorf("posting initialize to %s: %w", url, doErr)
			return result, err
		}

		if resp.StatusCode == http.StatusNotFound {
			drainBody(resp)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			drainBody(resp)
			err = fmt.Errorf("initialize returned HTTP %d from %s", resp.StatusCode, url)
			return result, err
		}

		sessionID := resp.Header.Get(SessionHeader)

		env, _, decodeErr := decodeEnvelope(resp)
		drainBody(resp)

		if decodeErr != nil {
			err = fmt.Errorf("decoding initialize response: %w", decodeErr)
			return result, err
		}

		if env.Error != nil {
			err = fmt.Errorf("initialize rejected: %s (code %d)", env.Error.Message, env.Error.Code)
			return result, err
		}

		if sessionID == "" {
			err = fmt.Errorf("no %s header in initialize response from %s", SessionHeader, url)
			return result, err
		}

		result = &sessionState{id: sessionID, path: path}
		return result, err
	}

	err = fmt.Errorf("no RPC endpoint found under %s: all candidate paths returned 404", m.baseURL)
	return result, err
}

// notifyInitialized fires the one-way initialized notification on the path
// the handshake resolved. Failures are logged and swallowed.
func (m *SessionManager) notifyInitialized(ctx context.Context, state *sessionState) {
	payload := Request{
		JSONRPC: jsonRPCVersion,
		Method:  methodInitialized,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		m.logger.WarnContext(ctx, "encoding initialized notification failed", slog.String("error", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+state.path, bytes.NewReader(body))
	if err != nil {
		m.logger.WarnContext(ctx, "building initialized notification failed", slog.String("error", err.Error()))
		return
	}

	setRPCHeaders(req, state.id)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.WarnContext(ctx, "initialized notification failed", slog.String("error", err.Error()))
		return
	}

	drainBody(resp)
}

// setRPCHeaders applies the wire headers every RPC request carries.
// sessionID is empty only for the initialize handshake itself.
func setRPCHeaders(req *http.Request, sessionID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
}

// drainBody discards and closes a response body so the connection can be
// reused.
func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
