package chat

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mmmm144/ai-agent/pkg/metrics"
)

// DefaultAppName keys every session this backend creates.
const DefaultAppName = "vnstock_app"

const (
	// apologyReply is what the user sees when the agent run fails. The
	// conversational surface never hard-fails on a tool or model error.
	apologyReply = "Xin lỗi, đã có lỗi xảy ra khi xử lý yêu cầu. Vui lòng thử lại."

	// placeholderReply flags a turn whose events carried no text at all.
	placeholderReply = "[DEBUG] Agent không trả về text – kiểm tra raw_agent_output.events để debug."
)

// Runner drives one agent turn and reports the events it emitted.
type Runner interface {
	Run(ctx context.Context, sess *Session, message string) (events []Event, err error)
}

// TurnResult is the raw outcome of one turn, serialized verbatim into the
// chat response's raw_agent_output field.
type TurnResult struct {
	Reply  string  `json:"reply"`
	Events []Event `json:"events"`
}

// Orchestrator owns the session store and shields callers from agent
// failures: whatever happens inside a run, the caller gets a reply string.
type Orchestrator struct {
	runner Runner
	store  *SessionStore
	logger *slog.Logger
}

// NewOrchestrator wires a runner to a session store.
func NewOrchestrator(runner Runner, store *SessionStore, logger *slog.Logger) (result *Orchestrator) {
	result = &Orchestrator{
		runner: runner,
		store:  store,
		logger: logger,
	}

	return result
}

type runOutcome struct {
	events []Event
	err    error
}

// RunTurn executes one conversation turn. The run happens on its own
// goroutine so a panicking runner is contained there; the most recently
// emitted non-empty text wins as the reply. Errors become an apology, a
// silent run becomes a fallback placeholder, and the caller always gets
// a result.
func (o *Orchestrator) RunTurn(ctx context.Context, userID string, sessionID string, message string) (result TurnResult) {
	sess := o.store.GetOrCreate(userID, sessionID)

	outcome := make(chan runOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.ErrorContext(ctx, "agent run panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))

				outcome <- runOutcome{err: fmt.Errorf("agent run panicked: %v", r)}
			}
		}()

		events, err := o.runner.Run(ctx, sess, message)
		outcome <- runOutcome{events: events, err: err}
	}()

	run := <-outcome

	if run.err != nil {
		metrics.AgentRunsTotal.WithLabelValues("error").Inc()

		o.logger.ErrorContext(ctx, "agent run failed",
			slog.String("user_id", userID),
			slog.String("session_id", sessionID),
			slog.Any("error", run.err))

		result = TurnResult{
			Reply:  apologyReply,
			Events: []Event{{Type: EventError, Error: run.err.Error()}},
		}

		return result
	}

	metrics.AgentRunsTotal.WithLabelValues("success").Inc()

	reply := ""

	for _, event := range run.events {
		if text := event.TextContent(); text != "" {
			reply = text
		}
	}

	if reply == "" {
		reply = placeholderReply
	}

	events := run.events
	if events == nil {
		events = make([]Event, 0)
	}

	result = TurnResult{Reply: reply, Events: events}
	return result
}
