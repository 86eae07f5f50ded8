package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/mmmm144/ai-agent/pkg/chat"
	"github.com/mmmm144/ai-agent/pkg/metrics"
)

// maxToolRounds bounds how many model/tool exchanges one turn may take. A
// turn that is still requesting tools after this many rounds ends with
// whatever trace it produced.
const maxToolRounds = 8

// messenger is the slice of Client the runner needs.
type messenger interface {
	SendMessage(ctx context.Context, req MessageRequest) (result MessageResponse, err error)
}

// Runner drives the model/tool loop for one turn at a time. It satisfies
// the chat orchestrator's Runner contract.
type Runner struct {
	client    messenger
	tools     map[string]Tool
	defs      []anthropic.ToolDefinition
	system    string
	maxTokens int
	logger    *slog.Logger
}

// NewRunner builds a runner over the Claude client and the given tools.
// maxTokens caps each model response; 0 uses the client default.
func NewRunner(client *Client, tools []Tool, maxTokens int, logger *slog.Logger) (result *Runner) {
	result = newRunner(client, tools, maxTokens, logger)
	return result
}

func newRunner(client messenger, tools []Tool, maxTokens int, logger *slog.Logger) (result *Runner) {
	byName := make(map[string]Tool, len(tools))
	defs := make([]anthropic.ToolDefinition, 0, len(tools))

	for _, tool := range tools {
		byName[tool.Name()] = tool
		defs = append(defs, anthropic.ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}

	result = &Runner{
		client:    client,
		tools:     byName,
		defs:      defs,
		system:    SystemPrompt(),
		maxTokens: maxTokens,
		logger:    logger,
	}

	return result
}

// Definitions returns the tool definitions advertised to the model.
func (r *Runner) Definitions() (result []anthropic.ToolDefinition) {
	result = r.defs
	return result
}

// Run executes one conversation turn: the user message goes to the model,
// requested tools are dispatched, and the exchange repeats until the model
// stops asking for tools or the round budget runs out. The session history
// is updated only when the turn completes.
func (r *Runner) Run(ctx context.Context, sess *chat.Session, message string) (events []chat.Event, err error) {
	messages := AppendUserMessage(sess.History(), message)
	events = make([]chat.Event, 0, 4)

	r.logger.InfoContext(ctx, "agent turn started",
		slog.String("user_id", sess.UserID),
		slog.String("session_id", sess.SessionID),
		slog.Int("history_messages", len(messages)-1),
		slog.Int("tools", len(r.defs)))

	for round := 0; round < maxToolRounds; round++ {
		var resp MessageResponse

		resp, err = r.client.SendMessage(ctx, MessageRequest{
			SystemPrompt: r.system,
			Messages:     messages,
			Tools:        r.defs,
			MaxTokens:    r.maxTokens,
		})
		if err != nil {
			err = fmt.Errorf("running agent turn: %w", err)
			return events, err
		}

		messages = AppendAssistantMessage(messages, resp.Content)

		for _, text := range resp.TextResponses {
			events = append(events, chat.Event{
				Author: AgentName,
				Type:   chat.EventMessage,
				Content: &chat.Content{
					Role:  "model",
					Parts: []chat.Part{{Text: text}},
				},
			})
		}

		if len(resp.ToolUses) == 0 {
			sess.SetHistory(messages)
			return events, err
		}

		for _, use := range resp.ToolUses {
			args := decodeToolArguments(use.Input)

			events = append(events, chat.Event{
				Author: AgentName,
				Type:   chat.EventToolUse,
				Tool:   use.Name,
				Input:  args,
			})

			payload, isError := r.dispatchTool(ctx, use.Name, args)
			payload = FormatToolResult(payload)

			events = append(events, chat.Event{
				Author: AgentName,
				Type:   chat.EventToolResult,
				Tool:   use.Name,
				Output: payload,
			})

			messages = AppendToolResult(messages, use.ID, payload, isError)
		}
	}

	r.logger.WarnContext(ctx, "tool round budget exhausted",
		slog.String("session_id", sess.SessionID),
		slog.Int("rounds", maxToolRounds))

	sess.SetHistory(messages)

	return events, err
}

// dispatchTool runs one requested tool and reports the outcome.
func (r *Runner) dispatchTool(ctx context.Context, name string, args map[string]any) (payload string, isError bool) {
	tool, known := r.tools[name]
	if !known {
		metrics.ToolInvocationsTotal.WithLabelValues(name, "error").Inc()

		r.logger.WarnContext(ctx, "model requested unknown tool",
			slog.String("tool", name))

		payload = fmt.Sprintf("Error: unknown tool %q", name)
		isError = true

		return payload, isError
	}

	r.logger.InfoContext(ctx, "dispatching tool",
		slog.String("tool", name),
		slog.Int("arguments", len(args)))

	payload, isError = tool.Invoke(ctx, args)

	status := "success"
	if isError {
		status = "error"
	}

	metrics.ToolInvocationsTotal.WithLabelValues(name, status).Inc()

	return payload, isError
}

// decodeToolArguments parses a tool_use input block. Undecodable input
// degrades to no arguments; normalization downstream tolerates that.
func decodeToolArguments(input json.RawMessage) (result map[string]any) {
	result = make(map[string]any)

	if len(input) == 0 {
		return result
	}

	if err := json.Unmarshal(input, &result); err != nil {
		result = make(map[string]any)
	}

	return result
}
