package bot

import "sync"

type Step string

const (
	// StepAwaitQuantity waits for a free-text quantity after tier selection.
	StepAwaitQuantity Step = "await_quantity"
	// StepAwaitScreenshot waits for the payment proof image.
	StepAwaitScreenshot Step = "await_screenshot"
	// StepRecovery waits for one order id lookup, then reverts to idle.
	StepRecovery Step = "recovery"
)

// Session is ephemeral per-buyer conversational state. It is never
// persisted; a restart simply puts every buyer back to idle.
type Session struct {
	Step    Step
	TierKey string
	OrderID string
}

// SessionStore tracks sessions per chat identity. Absence of a session
// means the buyer is idle.
type SessionStore interface {
	Get(chatID int64) (Session, bool)
	Set(chatID int64, s Session)
	Clear(chatID int64)
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[int64]Session)}
}

func (s *memorySessionStore) Get(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

func (s *memorySessionStore) Set(chatID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = sess
}

func (s *memorySessionStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
