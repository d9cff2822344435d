package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kapu/attendee-profile-web/internal/constants"
	"github.com/kapu/attendee-profile-web/internal/domain"
	"github.com/kapu/attendee-profile-web/pkg/errors"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries are stored in their
// JSON form so both stores share exactly the same persisted shape.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = constants.SessionConfig.TTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now != nil {
		m.now = now
	}
	return m
}

func (m *MemoryStore) Load(_ context.Context, sessionID, shortID string) (domain.SessionState, bool, error) {
	key := storageKey(sessionID, shortID)

	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && m.ttl > 0 && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return domain.SessionState{}, false, nil
	}

	var state domain.SessionState
	if err := json.Unmarshal(entry.data, &state); err != nil {
		return domain.SessionState{}, false, errors.NewSessionError("unmarshal failed", "load", key, err)
	}
	return state, true, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, state domain.SessionState) error {
	key := storageKey(sessionID, state.ShortID)

	data, err := json.Marshal(state)
	if err != nil {
		return errors.NewSessionError("marshal failed", "save", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		data:      data,
		expiresAt: m.now().Add(m.ttl),
	}
	m.sweepLocked()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// sweepLocked drops expired entries. Must be called with the lock held.
func (m *MemoryStore) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
