package pomodoro

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sadopc/remindr/internal/notify"
)

// Manager owns the per-session timers, keyed by an opaque client-held
// token. The hosting shell hands the token back on every call instead of
// relying on any framework session magic.
type Manager struct {
	history  HistoryWriter
	notifier notify.Notifier
	log      *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Timer
}

func NewManager(history HistoryWriter, notifier notify.Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		history:  history,
		notifier: notifier,
		log:      logger,
		sessions: make(map[string]*Timer),
	}
}

// Create builds a new timer session and returns its token.
func (m *Manager) Create(cfg Config) (string, *Timer) {
	t := NewTimer(cfg, m.history, m.notifier, m.log)
	token := uuid.NewString()

	m.mu.Lock()
	m.sessions[token] = t
	m.mu.Unlock()
	return token, t
}

// Get returns the timer for a token, if the session exists.
func (m *Manager) Get(token string) (*Timer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.sessions[token]
	return t, ok
}

// Remove drops a session. The timer itself is inert once no ticker drives it.
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
