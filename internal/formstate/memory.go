package formstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// MemoryStore implements Store with in-memory storage, for tests and local
// development without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string][]byte),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, key string, dest any) (bool, error) {
	s.mu.RLock()
	data, ok := s.sessions[sessionID][key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("form state for session %s key %s is corrupt, dropping: %v", sessionID, key, err)
		s.mu.Lock()
		delete(s.sessions[sessionID], key)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		delete(s.sessions[sessionID], key)
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal form state failed: %w", err)
	}
	if s.sessions[sessionID] == nil {
		s.sessions[sessionID] = make(map[string][]byte)
	}
	s.sessions[sessionID][key] = data
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a stored entry with undecodable bytes. Test helper.
func (s *MemoryStore) Corrupt(sessionID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sessionID] == nil {
		s.sessions[sessionID] = make(map[string][]byte)
	}
	s.sessions[sessionID][key] = []byte("{not-json")
}
