package store

import (
	"slices"
	"sync"
)

// Memory is an in-process key-value byte store
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// Writes counts successful Set calls
	Writes int
}

// NewMemory creates an empty Memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set stores a copy of value under key
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = slices.Clone(value)
	m.Writes++
	return nil
}
