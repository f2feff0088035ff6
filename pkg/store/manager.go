package store

import (
	"sync"

	"goalspace-backend/pkg/database"
	"goalspace-backend/pkg/logger"
)

// Manager hands out one Store per authenticated user, creating it
// lazily and seeding it from the local durable cache on first access.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	db     database.DatabaseInterface
	cache  *Cache
	log    *logger.Logger
}

// NewManager builds a store registry. cache may be nil.
func NewManager(db database.DatabaseInterface, cache *Cache, log *logger.Logger) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		db:     db,
		cache:  cache,
		log:    log,
	}
}

// Get returns the user's store, creating it on first access.
func (m *Manager) Get(userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s
	}
	s := New(userID, m.db, m.cache, m.log)
	m.stores[userID] = s
	return s
}

// Remove resets and drops a user's store on sign-out, clearing the
// cached snapshot with it.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	s, ok := m.stores[userID]
	delete(m.stores, userID)
	m.mu.Unlock()

	if ok {
		s.Reset()
	}
	if m.cache != nil {
		if err := m.cache.Delete(userID); err != nil {
			m.log.Warn("failed to clear cached snapshot", "user_id", userID, "error", err)
		}
	}
}
