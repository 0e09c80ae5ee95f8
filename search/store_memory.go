package search

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. It serves single-instance
// deployments without Redis and tests.
type MemoryStore struct {
	mu       sync.Mutex
	gens     map[string]int64
	sessions map[string]memoryEntry
	locks    map[string]time.Time
	ttl      time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// NewMemoryStore creates an in-process store.
func NewMemoryStore(ttl, lockTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		gens:     make(map[string]int64),
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]time.Time),
		ttl:      ttl,
		lockTTL:  lockTTL,
		now:      time.Now,
	}
}

func memoryKey(sid string, gen int64) string {
	return fmt.Sprintf("%s:%d", sid, gen)
}

func (m *MemoryStore) NextGeneration(_ context.Context, sid string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.gens[sid]
	delete(m.sessions, memoryKey(sid, prev))
	m.gens[sid] = prev + 1
	return prev + 1, nil
}

func (m *MemoryStore) CurrentGeneration(_ context.Context, sid string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[sid], nil
}

func (m *MemoryStore) Load(_ context.Context, sid string, gen int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[memoryKey(sid, gen)]
	if !ok || m.now().After(entry.expires) {
		return nil, ErrSessionNotFound
	}
	s := entry.session
	s.Seen = append([]string(nil), entry.session.Seen...)
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, sid string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *s
	stored.Seen = append([]string(nil), s.Seen...)
	m.sessions[memoryKey(sid, s.Generation)] = memoryEntry{session: stored, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Acquire(_ context.Context, sid string, gen int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(sid, gen)
	if until, held := m.locks[key]; held && m.now().Before(until) {
		return false, nil
	}
	m.locks[key] = m.now().Add(m.lockTTL)
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, sid string, gen int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, memoryKey(sid, gen))
	return nil
}

// Sweep drops expired sessions and stale locks and returns how many
// sessions were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, key)
			removed++
		}
	}
	for key, until := range m.locks {
		if now.After(until) {
			delete(m.locks, key)
		}
	}
	return removed
}
