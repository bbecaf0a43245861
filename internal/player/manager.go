package player

import (
	"sync"

	"github.com/google/uuid"

	"summarist/internal/models"
	"summarist/internal/state"
)

// Manager owns the live sessions. Opening runs the auth and entitlement
// guards; closing releases the session so nothing stale can write back into
// the state store.
type Manager struct {
	mu              sync.Mutex
	sessions        map[string]*Session
	finishThreshold float64
	notify          Notifier
}

// NewManager creates a session manager. finishThreshold is the reading
// completion percentage (95 in the default config); notify may be nil.
func NewManager(finishThreshold float64, notify Notifier) *Manager {
	if finishThreshold <= 0 {
		finishThreshold = 95
	}
	return &Manager{
		sessions:        make(map[string]*Session),
		finishThreshold: finishThreshold,
		notify:          notify,
	}
}

// Open creates a session for the book in the given mode. An unauthenticated
// store refuses outright; a premium book without an active subscription
// fails the entitlement guard before the session ever starts loading, and
// the caller redirects to plan selection instead.
func (m *Manager) Open(st *state.Store, book models.Book, mode Mode) (*Session, error) {
	auth := st.Auth()
	if !auth.IsAuthenticated {
		return nil, ErrNotAuthenticated
	}
	if book.SubscriptionRequired && !auth.User.HasActiveSubscription() {
		return nil, ErrSubscriptionRequired
	}

	s := &Session{
		id:              uuid.NewString(),
		mode:            mode,
		book:            book,
		store:           st,
		status:          StatusLoading,
		rate:            1,
		volume:          1,
		fontSize:        FontSizeDefault,
		finishThreshold: m.finishThreshold,
		notify:          m.notify,
	}
	// Reading has no media metadata to wait for; the text is already here.
	if mode == ModeReading {
		s.status = StatusReady
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close releases the session and forgets it. Closing an unknown id is a
// no-op, which makes the unmount path safe to run twice.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll releases every live session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
