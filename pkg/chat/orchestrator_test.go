package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() (result *slog.Logger) {
	result = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	return result
}

// scriptedRunner replays a fixed outcome and records what it was asked.
type scriptedRunner struct {
	events []Event
	err    error

	gotSession *Session
	gotMessage string
}

func (r *scriptedRunner) Run(_ context.Context, sess *Session, message string) (events []Event, err error) {
	r.gotSession = sess
	r.gotMessage = message

	events = r.events
	err = r.err

	return events, err
}

// panickingRunner simulates a crash inside the agent loop.
type panickingRunner struct{}

func (r *panickingRunner) Run(_ context.Context, _ *Session, _ string) (events []Event, err error) {
	panic("tool dispatch blew up")
}

func newTestOrchestrator(runner Runner) (result *Orchestrator) {
	result = NewOrchestrator(runner, NewSessionStore(DefaultAppName), testLogger())
	return result
}

func TestRunTurnReplyFromContentParts(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		events: []Event{
			{
				Author: "vnstock_agent",
				Type:   EventMessage,
				Content: &Content{
					Role:  "model",
					Parts: []Part{{Text: "Giá VNM hiện tại là 65,400 VND."}},
				},
			},
		},
	}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, "Giá VNM hiện tại là 65,400 VND.", result.Reply, "reply should come from the content parts")
	assert.Len(t, result.Events, 1, "the runner's events should pass through")
	assert.Equal(t, "giá VNM?", runner.gotMessage, "the user message should reach the runner")

	require.NotNil(t, runner.gotSession, "the runner should receive a session")
	assert.Equal(t, "user-1", runner.gotSession.UserID, "the session should belong to the caller")
}

func TestRunTurnLastNonEmptyTextWins(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		events: []Event{
			{Type: EventMessage, Text: "Đang tra cứu..."},
			{Type: EventToolUse, Tool: "get_stock_price"},
			{Type: EventToolResult, Tool: "get_stock_price", Output: "VNM: 65,400"},
			{Type: EventMessage, Text: "Giá VNM là 65,400 VND."},
		},
	}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, "Giá VNM là 65,400 VND.", result.Reply, "the final text should win")
	assert.Len(t, result.Events, 4, "every event should be preserved")
}

func TestRunTurnMessageStringEvent(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		events: []Event{
			{Type: EventMessage, Message: "Xin chào!"},
		},
	}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "chào bạn")

	assert.Equal(t, "Xin chào!", result.Reply, "a message-shaped event should supply the reply")
}

func TestRunTurnErrorReplacesEvents(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		events: []Event{{Type: EventMessage, Text: "partial output"}},
		err:    fmt.Errorf("calling model: connection refused"),
	}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, apologyReply, result.Reply, "a failed run should apologize")

	require.Len(t, result.Events, 1, "failure should replace the event trace")
	assert.Equal(t, EventError, result.Events[0].Type, "the surviving event should be an error")
	assert.Contains(t, result.Events[0].Error, "connection refused", "the error detail should survive")
}

func TestRunTurnPanicBecomesApology(t *testing.T) {
	t.Parallel()

	orch := newTestOrchestrator(&panickingRunner{})

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, apologyReply, result.Reply, "a panicking run should apologize, not crash")

	require.Len(t, result.Events, 1, "the panic should surface as one error event")
	assert.Equal(t, EventError, result.Events[0].Type, "the surviving event should be an error")
	assert.Contains(t, result.Events[0].Error, "tool dispatch blew up", "the panic value should survive")
}

func TestRunTurnEmptyEventsYieldPlaceholder(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{events: []Event{}}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, placeholderReply, result.Reply, "a silent run should yield the fallback placeholder")
	assert.NotNil(t, result.Events, "events should serialize as a list, not null")
	assert.Empty(t, result.Events, "no events were produced")
}

func TestRunTurnTextlessEventsYieldPlaceholder(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		events: []Event{
			{Type: EventToolUse, Tool: "get_stock_price"},
			{Type: EventToolResult, Tool: "get_stock_price", Output: "VNM: 65,400"},
		},
	}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, placeholderReply, result.Reply, "tool-only traces carry no reply text")
	assert.Len(t, result.Events, 2, "the tool trace should still be returned")
}

func TestRunTurnNilEventsYieldEmptyList(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{events: nil}

	orch := newTestOrchestrator(runner)

	result := orch.RunTurn(context.Background(), "user-1", "session-1", "giá VNM?")

	assert.Equal(t, placeholderReply, result.Reply, "a nil trace should yield the placeholder")
	assert.NotNil(t, result.Events, "events should serialize as a list, not null")
}

func TestRunTurnReusesSession(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{
		events: []Event{{Type: EventMessage, Text: "ok"}},
	}

	orch := newTestOrchestrator(runner)

	orch.RunTurn(context.Background(), "user-1", "session-1", "first")
	first := runner.gotSession

	orch.RunTurn(context.Background(), "user-1", "session-1", "second")
	second := runner.gotSession

	assert.Same(t, first, second, "turns on the same key should share a session")
}
