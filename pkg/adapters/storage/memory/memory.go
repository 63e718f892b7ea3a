package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aescanero/botutils/pkg/ports"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// InMemoryStateStorage implements StateStorage using an in-memory map
type InMemoryStateStorage struct {
	states map[string]entry
	mu     sync.RWMutex
	now    func() time.Time
}

// NewInMemoryStateStorage creates a new in-memory state storage
func NewInMemoryStateStorage() *InMemoryStateStorage {
	return &InMemoryStateStorage{
		states: make(map[string]entry),
		now:    time.Now,
	}
}

// Save persists state under key (ports.StateStorage interface)
func (s *InMemoryStateStorage) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to avoid aliasing the caller's buffer
	buf := make([]byte, len(data))
	copy(buf, data)
	s.states[key] = entry{data: buf}
	return nil
}

// Load retrieves state for a key (ports.StateStorage interface)
func (s *InMemoryStateStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.states[key]
	if !ok || e.expired(s.now()) {
		return nil, fmt.Errorf("%w: %s", ports.ErrStateNotFound, key)
	}

	buf := make([]byte, len(e.data))
	copy(buf, e.data)
	return buf, nil
}

// Delete removes state for a key (ports.StateStorage interface)
func (s *InMemoryStateStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, key)
	return nil
}

// Exists checks if state exists for a key (ports.StateStorage interface)
func (s *InMemoryStateStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.states[key]
	return ok && !e.expired(s.now()), nil
}

// SetTTL sets a time-to-live for state data (ports.StateStorage interface)
func (s *InMemoryStateStorage) SetTTL(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.states[key]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrStateNotFound, key)
	}
	if ttl <= 0 {
		e.expiresAt = time.Time{}
	} else {
		e.expiresAt = s.now().Add(ttl)
	}
	s.states[key] = e
	return nil
}

// List returns all live keys in sorted order (ports.StateStorage interface)
func (s *InMemoryStateStorage) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	keys := make([]string, 0, len(s.states))
	for key, e := range s.states {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}
