package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mmmm144/ai-agent/pkg/metrics"
)

// Client issues JSON-RPC calls to the remote tool server, multiplexed over
// the session the SessionManager negotiated. Calls are synchronous, one at a
// time from each caller; there is no retry beyond the candidate-path probe
// and no cancellation beyond the HTTP client timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	paths      []string
	sessions   *SessionManager
	logger     *slog.Logger
	nextID     atomic.Int64
}

// NewClient creates a client (and its session manager) for the server at
// baseURL. timeout bounds every request on the wire.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (result *Client) {
	httpClient := &http.Client{Timeout: timeout}
	base := strings.TrimRight(baseURL, "/")
	paths := []string{"/mcp", "/"}

	result = &Client{
		httpClient: httpClient,
		baseURL:    base,
		paths:      paths,
		sessions:   NewSessionManager(base, paths, httpClient, logger),
		logger:     logger,
	}

	return result
}

// Sessions exposes the session manager, mainly so callers can warm the
// handshake at startup.
func (c *Client) Sessions() (result *SessionManager) {
	result = c.sessions
	return result
}

// Call issues one RPC call and returns the envelope's result value, or the
// whole envelope body when the envelope carries no result field. Every
// failure comes back as a *CallError value; nothing is panicked across this
// boundary.
func (c *Client) Call(ctx context.Context, method string, params map[string]any) (result json.RawMessage, err error) {
	sessionID, ensureErr := c.sessions.Ensure(ctx)
	if ensureErr != nil {
		metrics.MCPCallsTotal.WithLabelValues(method, "error").Inc()
		err = &CallError{Method: method, Message: fmt.Sprintf("no session: %v", ensureErr)}
		return result, err
	}

	payload := Request{
		JSONRPC: jsonRPCVersion,
		ID:      int(c.nextID.Add(1)),
		Method:  method,
		Params:  params,
	}

	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		metrics.MCPCallsTotal.WithLabelValues(method, "error").Inc()
		err = &CallError{Method: method, Message: fmt.Sprintf("encoding request: %v", marshalErr)}
		return result, err
	}

	env, raw, postErr := c.post(ctx, method, sessionID, body)
	if postErr != nil {
		metrics.MCPCallsTotal.WithLabelValues(method, "error").Inc()
		err = postErr
		return result, err
	}

	if env.Error != nil {
		metrics.MCPCallsTotal.WithLabelValues(method, "error").Inc()
		c.logger.WarnContext(ctx, "rpc call returned error envelope",
			slog.String("method", method),
			slog.Int("code", env.Error.Code),
			slog.String("message", env.Error.Message))

		err = &CallError{Method: method, Code: env.Error.Code, Message: env.Error.Message}
		return result, err
	}

	metrics.MCPCallsTotal.WithLabelValues(method, "success").Inc()

	if len(env.Result) > 0 {
		result = env.Result
		return result, err
	}

	result = raw
	return result, err
}

// post walks the candidate-path list. A 404 advances to the next path; any
// other failure, including exhausting the list, is terminal for this call.
func (c *Client) post(ctx context.Context, method string, sessionID string, body []byte) (env Envelope, raw json.RawMessage, err error) {
	for _, path := range c.paths {
		url := c.baseURL + path

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if reqErr != nil {
			err = &CallError{Method: method, Message: fmt.Sprintf("building request: %v", reqErr)}
			return env, raw, err
		}

		setRPCHeaders(req, sessionID)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			err = &CallError{Method: method, Message: doErr.Error()}
			return env, raw, err
		}

		if resp.StatusCode == http.StatusNotFound {
			drainBody(resp)
			continue
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			drainBody(resp)
			err = &CallError{Method: method, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
			return env, raw, err
		}

		env, raw, err = decodeEnvelope(resp)
		drainBody(resp)

		if err != nil {
			err = &CallError{Method: method, Message: err.Error()}
			return env, raw, err
		}

		return env, raw, err
	}

	err = &CallError{Method: method, Message: "no RPC endpoint found: all candidate paths returned 404"}
	return env, raw, err
}

// decodeEnvelope reads a response body and decodes the JSON-RPC envelope it
// carries, unwrapping the SSE framing first when the server streamed it.
// raw is the envelope JSON after any unwrapping. The body is not closed.
func decodeEnvelope(resp *http.Response) (env Envelope, raw json.RawMessage, err error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("reading response body: %w", err)
		return env, raw, err
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		payload, found := firstSSEData(data)
		if !found {
			err = fmt.Errorf("no data line in event stream response")
			return env, raw, err
		}

		data = payload
	}

	err = json.Unmarshal(data, &env)
	if err != nil {
		err = fmt.Errorf("decoding envelope: %w", err)
		return env, raw, err
	}

	raw = json.RawMessage(data)
	return env, raw, err
}

// firstSSEData extracts the payload of the first "data: " line of an SSE
// stream. The server sends exactly one envelope per response.
func firstSSEData(data []byte) (result []byte, found bool) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")

		const prefix = "data: "
		if strings.HasPrefix(line, prefix) {
			result = []byte(line[len(prefix):])
			found = true
			return result, found
		}
	}

	return result, found
}
