package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mmmm144/ai-agent/pkg/chat"
	"github.com/mmmm144/ai-agent/pkg/ui"
)

// Message roles accepted in a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Defaults applied when the client sends no metadata.
const (
	DefaultUserID    = "user-unknown"
	DefaultSessionID = "default-session"
	DefaultLocale    = "vi-VN"
)

// minLetterRatio is the minimum share of letters among the non-space
// characters of a user message. Anything below reads as spam.
const minLetterRatio = 0.3

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	// vietnameseLetter matches one Latin letter or one Vietnamese letter
	// with diacritics. The diacritic range covers the lowercase forms
	// plus đ/Đ; uppercase diacritic forms do not count as letters.
	vietnameseLetter = regexp.MustCompile(`[a-zA-ZàáảãạăắằẳẵặâấầẩẫậèéẻẽẹêếềểễệìíỉĩịòóỏõọôốồổỗộơớờởỡợùúủũụưứừửữựỳýỷỹỵđĐ]`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ChatMessage is one transcript entry sent by the web client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatMeta carries optional caller identity used to route the turn to a
// conversation session.
type ChatMeta struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Locale    string `json:"locale,omitempty"`
}

// ChatRequest is the POST /api/v1/chat body.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Meta     *ChatMeta     `json:"meta,omitempty"`
}

// ChatResponse is the chat endpoint reply: the agent's text plus the
// derived rendering instructions and follow-up suggestions. RawAgentOutput
// carries the full event trace for client-side debugging.
type ChatResponse struct {
	Reply              string           `json:"reply"`
	UIEffects          []ui.Instruction `json:"ui_effects"`
	SuggestionMessages []ui.Suggestion  `json:"suggestion_messages"`
	RawAgentOutput     *chat.TurnResult `json:"raw_agent_output"`
}

// Validate enforces the content rules on the most recent user message and
// rewrites that message with its normalized content. Error text is the
// Vietnamese detail string returned verbatim to the client.
func (r *ChatRequest) Validate() (err error) {
	if len(r.Messages) == 0 {
		err = errors.New("Messages không được rỗng")
		return err
	}

	for i := range r.Messages {
		role := r.Messages[i].Role
		if role != RoleUser && role != RoleAssistant && role != RoleSystem {
			err = fmt.Errorf("Role không hợp lệ: %q (phải là user, assistant hoặc system)", role)
			return err
		}
	}

	last := r.LastUserMessage()
	if last == nil {
		err = errors.New("Phải có ít nhất 1 message từ user")
		return err
	}

	content := strings.TrimSpace(last.Content)
	if content == "" {
		err = errors.New("Message content không được rỗng")
		return err
	}

	content = whitespaceRun.ReplaceAllString(content, " ")

	letterCount := len(vietnameseLetter.FindAllString(content, -1))
	if letterCount == 0 {
		err = errors.New("Message phải chứa ít nhất một chữ cái (có dấu hoặc không dấu đều được)")
		return err
	}

	// Ratio counts runes, not bytes: Vietnamese letters are multi-byte
	// and a byte count would reject valid accented input.
	totalChars := utf8.RuneCountInString(strings.ReplaceAll(content, " ", ""))
	if totalChars > 0 && float64(letterCount)/float64(totalChars) < minLetterRatio {
		err = errors.New("Message có quá nhiều ký tự đặc biệt. Vui lòng nhập nội dung rõ ràng hơn.")
		return err
	}

	last.Content = content

	if r.Meta != nil && r.Meta.Locale == "" {
		r.Meta.Locale = DefaultLocale
	}

	return nil
}

// LastUserMessage returns a pointer to the most recent user-role message,
// or nil when the transcript has none.
func (r *ChatRequest) LastUserMessage() (result *ChatMessage) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			result = &r.Messages[i]
			return result
		}
	}

	return nil
}

// Identity resolves the user and session ids for this request, applying
// the documented defaults when metadata is absent or partial.
func (r *ChatRequest) Identity() (userID string, sessionID string) {
	userID = DefaultUserID
	sessionID = DefaultSessionID

	if r.Meta == nil {
		return userID, sessionID
	}

	if r.Meta.UserID != "" {
		userID = r.Meta.UserID
	}

	if r.Meta.SessionID != "" {
		sessionID = r.Meta.SessionID
	}

	return userID, sessionID
}

// Locale returns the request locale, defaulting to Vietnamese.
func (r *ChatRequest) Locale() (result string) {
	result = DefaultLocale
	if r.Meta != nil && r.Meta.Locale != "" {
		result = r.Meta.Locale
	}

	return result
}
