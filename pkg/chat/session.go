package chat

import (
	"fmt"
	"sync"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/mmmm144/ai-agent/pkg/metrics"
)

// Session is one conversation thread: the model-facing message history for
// a (app, user, session) key. Histories grow for the process lifetime;
// there is no expiry, matching the protocol's lack of a logout.
type Session struct {
	App       string
	UserID    string
	SessionID string
	CreatedAt time.Time

	mu      sync.Mutex
	history []anthropic.Message
}

// History returns a copy of the message history.
func (s *Session) History() (result []anthropic.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result = make([]anthropic.Message, len(s.history))
	copy(result, s.history)

	return result
}

// SetHistory replaces the message history after a completed turn.
func (s *Session) SetHistory(history []anthropic.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = history
}

// SessionStore manages active sessions for one application.
type SessionStore struct {
	mu       sync.RWMutex
	app      string
	sessions map[string]*Session
}

// NewSessionStore creates an empty store for the named application.
func NewSessionStore(app string) (result *SessionStore) {
	result = &SessionStore{
		app:      app,
		sessions: make(map[string]*Session),
	}

	return result
}

func (st *SessionStore) key(userID string, sessionID string) (result string) {
	result = fmt.Sprintf("%s:%s:%s", st.app, userID, sessionID)
	return result
}

// GetOrCreate returns the session for (user, session), creating it when
// absent.
func (st *SessionStore) GetOrCreate(userID string, sessionID string) (result *Session) {
	key := st.key(userID, sessionID)

	st.mu.RLock()
	sess, exists := st.sessions[key]
	st.mu.RUnlock()

	if exists {
		result = sess
		return result
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Re-check under the write lock; another request may have won.
	sess, exists = st.sessions[key]
	if exists {
		result = sess
		return result
	}

	sess = &Session{
		App:       st.app,
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}

	st.sessions[key] = sess
	metrics.SessionsActive.Inc()

	result = sess
	return result
}

// Get retrieves an existing session.
func (st *SessionStore) Get(userID string, sessionID string) (result *Session, exists bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result, exists = st.sessions[st.key(userID, sessionID)]
	return result, exists
}

// Count returns the number of active sessions.
func (st *SessionStore) Count() (result int) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result = len(st.sessions)
	return result
}

// List returns all sessions, for debugging.
func (st *SessionStore) List() (result []*Session) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result = make([]*Session, 0, len(st.sessions))

	for _, sess := range st.sessions {
		result = append(result, sess)
	}

	return result
}
