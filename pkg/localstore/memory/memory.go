// Package memory is a map-backed localstore.Store for tests and for running
// without a data directory.
package memory

import (
	"sync"
)

// Store keeps values in process memory only.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	failed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get retrieves a value by key, nil if absent.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := append([]byte{}, value...)
	return out, nil
}

// Set stores a key-value pair.
func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return errUnavailable
	}
	s.data[key] = append([]byte{}, value...)
	return nil
}

// Delete removes a key-value pair.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed {
		return errUnavailable
	}
	delete(s.data, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// FailWrites makes subsequent writes error, simulating quota exhaustion.
// Test helper.
func (s *Store) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = fail
}
