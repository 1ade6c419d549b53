// Package session holds the process-wide auth session as an explicit,
// injectable value rather than ambient global state.
package session

import (
	"sync"

	"glimpse/internal/identity"
)

// Manager tracks the current session: uninitialized until NewManager runs,
// populated from the provider, updated on provider-pushed change events, and
// cleared on sign-out.
type Manager struct {
	mu      sync.RWMutex
	current *identity.Session
	sub     identity.Subscription
}

// NewManager creates a Manager seeded from the provider's current session and
// subscribed to its auth-state changes.
func NewManager(provider identity.Provider) *Manager {
	m := &Manager{current: provider.Session()}
	m.sub = provider.OnAuthStateChange(func(_ string, session *identity.Session) {
		m.mu.Lock()
		m.current = session
		m.mu.Unlock()
	})
	return m
}

// Current returns the session, nil when signed out.
func (m *Manager) Current() *identity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// UserID returns the acting user's store id, 0 when signed out.
func (m *Manager) UserID() uint {
	return m.Current().UserID()
}

// Close unsubscribes from provider events.
func (m *Manager) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
}
