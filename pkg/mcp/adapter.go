package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ToolAdapter binds one remote tool descriptor to the RPC client. A single
// generic adapter serves every declared tool; the descriptor supplies the
// schema and the alias table is derived from it once, at construction.
type ToolAdapter struct {
	client  *Client
	desc    ToolDescriptor
	aliases map[string]string
}

// NewToolAdapter creates the adapter for one descriptor.
func NewToolAdapter(client *Client, desc ToolDescriptor) (result *ToolAdapter) {
	result = &ToolAdapter{
		client:  client,
		desc:    desc,
		aliases: buildAliasTable(desc),
	}

	return result
}

// Name returns the remote tool's declared name.
func (a *ToolAdapter) Name() (result string) {
	result = a.desc.Name
	return result
}

// Description returns the remote tool's declared description.
func (a *ToolAdapter) Description() (result string) {
	result = a.desc.Description
	return result
}

// Descriptor returns the declared schema this adapter is bound to.
func (a *ToolAdapter) Descriptor() (result ToolDescriptor) {
	result = a.desc
	return result
}

// ToolResult is what an adapter hands back after a call. Failures are
// carried as values (Error, Tool, Code), never raised, so the agent can
// report a broken tool to the model and keep the turn alive.
type ToolResult struct {
	Text  string          `json:"text,omitempty"`
	Raw   json.RawMessage `json:"raw,omitempty"`
	Error string          `json:"error,omitempty"`
	Tool  string          `json:"tool,omitempty"`
	Code  int             `json:"code,omitempty"`
}

// IsError reports whether the call failed.
func (r ToolResult) IsError() (result bool) {
	result = r.Error != ""
	return result
}

// Payload renders the result as the text block a model-facing tool_result
// message carries.
func (r ToolResult) Payload() (result string) {
	if r.Error != "" {
		encoded, _ := json.Marshal(r)
		result = string(encoded)
		return result
	}

	if r.Text != "" {
		result = r.Text
		return result
	}

	result = string(r.Raw)
	return result
}

// contentItem is one entry of a tools/call result content list.
type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Invoke normalizes the caller's arguments, issues the tools/call RPC and
// flattens the response: a content list of text items joins with newlines, a
// bare text field passes through, anything else comes back raw.
func (a *ToolAdapter) Invoke(ctx context.Context, args map[string]any) (result ToolResult) {
	normalized := normalizeArguments(a.desc, a.aliases, args)

	raw, err := a.client.Call(ctx, methodToolsCall, map[string]any{
		"name":      a.desc.Name,
		"arguments": normalized,
	})
	if err != nil {
		var callErr *CallError
		if errors.As(err, &callErr) {
			result = ToolResult{Error: callErr.Message, Tool: a.desc.Name, Code: callErr.Code}
			return result
		}

		result = ToolResult{Error: err.Error(), Tool: a.desc.Name}
		return result
	}

	var payload struct {
		Content []contentItem `json:"content"`
		Text    string        `json:"text"`
	}

	if decodeErr := json.Unmarshal(raw, &payload); decodeErr == nil {
		if len(payload.Content) > 0 {
			texts := make([]string, 0, len(payload.Content))

			for _, item := range payload.Content {
				if item.Text != "" || item.Type == "text" {
					texts = append(texts, item.Text)
				}
			}

			if len(texts) > 0 {
				result = ToolResult{Text: strings.Join(texts, "\n")}
				return result
			}
		}

		if payload.Text != "" {
			result = ToolResult{Text: payload.Text}
			return result
		}
	}

	result = ToolResult{Raw: raw}
	return result
}
