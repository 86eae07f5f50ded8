package metrics

import "github.com/prometheus/client_golang/prometheus"

// Label constants.
const (
	Status    = "status"
	Method    = "method"
	ToolName  = "tool_name"
	TokenType = "token_type"
)

var (
	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ChatRequestsTotal Total number of chat requests received.
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests received",
		},
		[]string{Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// AgentRunsTotal Total number of agent turns executed.
	AgentRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_runs_total",
			Help: "Total number of agent turns executed",
		},
		[]string{Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ClaudeAPICallsTotal Total number of Claude API calls.
	ClaudeAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claude_api_calls_total",
			Help: "Total number of Claude API calls",
		},
		[]string{Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ClaudeAPITokensTotal Total number of tokens used by Claude API.
	ClaudeAPITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claude_api_tokens_total",
			Help: "Total number of tokens used by Claude API",
		},
		[]string{TokenType},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// MCPHandshakesTotal Total number of MCP session handshakes attempted.
	MCPHandshakesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_handshakes_total",
			Help: "Total number of MCP session handshakes attempted",
		},
		[]string{Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// MCPCallsTotal Total number of JSON-RPC calls issued to the MCP server.
	MCPCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_calls_total",
			Help: "Total number of JSON-RPC calls issued to the MCP server",
		},
		[]string{Method, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ToolInvocationsTotal Total number of tool invocations requested by the model.
	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_invocations_total",
			Help: "Total number of tool invocations requested by the model",
		},
		[]string{ToolName, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// SessionsActive Current number of conversation sessions in the store.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of conversation sessions in the store",
		},
	)
)

//nolint:gochecknoinits // This is how the prometheus magic works.
func init() {
	_ = prometheus.Register(ChatRequestsTotal)
	_ = prometheus.Register(AgentRunsTotal)
	_ = prometheus.Register(ClaudeAPICallsTotal)
	_ = prometheus.Register(ClaudeAPITokensTotal)
	_ = prometheus.Register(MCPHandshakesTotal)
	_ = prometheus.Register(MCPCallsTotal)
	_ = prometheus.Register(ToolInvocationsTotal)
	_ = prometheus.Register(SessionsActive)
}
