package mcp

import (
	"encoding/json"
	"fmt"
)

// Protocol constants for the streamable-http dialect spoken by the remote
// vnstock tool server.
const (
	ProtocolVersion = "2024-11-05"
	ClientName      = "vnstock-agent"
	ClientVersion   = "1.0.0"

	jsonRPCVersion = "2.0"

	methodInitialize  = "initialize"
	methodInitialized = "notifications/initialized"
	methodToolsList   = "tools/list"
	methodToolsCall   = "tools/call"

	// SessionHeader carries the negotiated session id on every request
	// after the handshake. The server sets it on the initialize response.
	SessionHeader = "mcp-session-id"
)

// Request is an outbound JSON-RPC request envelope. Notifications carry no
// id; omitempty drops the zero value for them.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// Envelope is an inbound JSON-RPC response envelope.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object carried by a failed response envelope.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CallError describes a failed RPC call: transport trouble, an undecodable
// body, or an error envelope from the server. It is always handed back as a
// value so a broken remote server degrades one call, never the whole turn.
type CallError struct {
	Method  string
	Code    int
	Message string
}

func (e *CallError) Error() (result string) {
	if e.Code != 0 {
		result = fmt.Sprintf("rpc %s failed: %s (code %d)", e.Method, e.Message, e.Code)
		return result
	}

	result = fmt.Sprintf("rpc %s failed: %s", e.Method, e.Message)
	return result
}

// ToolDescriptor mirrors the remote server's declared schema for one tool.
// Immutable once fetched; the bridge never rewrites it.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON-schema fragment describing a tool's parameters.
type InputSchema struct {
	Type       string                    `json:"type,omitempty"`
	Properties map[string]PropertySchema `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema describes one declared parameter.
type PropertySchema struct {
	Type        SchemaType      `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Default     any             `json:"default,omitempty"`
	Items       json.RawMessage `json:"items,omitempty"`
}

// SchemaType is a JSON-schema type designator. Servers declare it either as
// a single string or as a list of alternatives; both forms decode here.
type SchemaType []string

// UnmarshalJSON accepts "string" and ["string", "null"] designators.
func (t *SchemaType) UnmarshalJSON(data []byte) (err error) {
	var single string
	if err = json.Unmarshal(data, &single); err == nil {
		*t = SchemaType{single}
		return nil
	}

	var many []string
	if err = json.Unmarshal(data, &many); err == nil {
		*t = SchemaType(many)
		return nil
	}

	return fmt.Errorf("schema type is neither a string nor a list: %s", data)
}

// MarshalJSON writes the single-designator form back out when possible.
func (t SchemaType) MarshalJSON() (result []byte, err error) {
	if len(t) == 1 {
		result, err = json.Marshal(t[0])
		return result, err
	}

	result, err = json.Marshal([]string(t))
	return result, err
}

// Has reports whether name is among the declared designators.
func (t SchemaType) Has(name string) (result bool) {
	for _, candidate := range t {
		if candidate == name {
			result = true
			return result
		}
	}

	return result
}

// ToolCallParams are the params of a tools/call request.
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}
