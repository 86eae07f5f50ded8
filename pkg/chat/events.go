package chat

// EventType classifies one trace event emitted during an agent turn.
type EventType string

// Event types in the order a typical turn emits them.
const (
	EventMessage    EventType = "message"
	EventToolUse    EventType = "tool_use"
	EventToolResult EventType = "tool_result"
	EventError      EventType = "error"
)

// Part is one piece of event content.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content groups parts under the speaking role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Event is one entry of a turn's trace. Agent runners differ in where they
// put text, so the shape is deliberately loose; everything serializes into
// raw_agent_output.events for the caller to inspect.
type Event struct {
	Author  string         `json:"author,omitempty"`
	Type    EventType      `json:"type,omitempty"`
	Content *Content       `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Message any            `json:"message,omitempty"`
	Tool    string         `json:"tool,omitempty"`
	Input   map[string]any `json:"input,omitempty"`
	Output  string         `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func firstPartText(parts []Part) (result string) {
	for _, part := range parts {
		if part.Text != "" {
			result = part.Text
			return result
		}
	}

	return result
}

// TextContent extracts the reply-bearing text from whichever field carries
// it: content parts first, then the direct text field, then the nested
// message. An empty string means the event carries no reply text.
func (e Event) TextContent() (result string) {
	if e.Content != nil {
		if text := firstPartText(e.Content.Parts); text != "" {
			result = text
			return result
		}
	}

	if e.Text != "" {
		result = e.Text
		return result
	}

	switch msg := e.Message.(type) {
	case string:
		result = msg

	case Content:
		result = firstPartText(msg.Parts)

	case *Content:
		if msg != nil {
			result = firstPartText(msg.Parts)
		}
	}

	return result
}
