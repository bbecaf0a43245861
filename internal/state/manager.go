package state

import (
	"sync"

	"summarist/internal/persist"
)

// Manager hands out one hydrated store per user account. The original state
// tree is process-wide; on a multi-account server each account gets its own
// tree, persisted under namespaced copies of the same logical keys.
type Manager struct {
	mu     sync.Mutex
	base   persist.Adapter
	stores map[string]*Store
}

// NewManager creates a manager over the given base adapter.
func NewManager(base persist.Adapter) *Manager {
	return &Manager{base: base, stores: make(map[string]*Store)}
}

// For returns the store for the given uid, creating and hydrating it on
// first use. Hydration happens exactly once per store lifetime.
func (m *Manager) For(uid string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.stores[uid]; ok {
		return st
	}
	st := New(persist.ForUser(m.base, uid))
	st.Hydrate()
	m.stores[uid] = st
	return st
}

// Forget drops the in-memory store for a uid. Persisted state is untouched;
// the next For call re-hydrates from storage.
func (m *Manager) Forget(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, uid)
}
