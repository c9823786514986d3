package kvstore

import (
	"bytes"
	"sort"
	"sync"
)

func init() {
	Register("memory", func(string) (Store, error) {
		return NewMemory(), nil
	})
}

// Memory is an in-memory store used by tests and standalone mode.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.items[string(key)] = stored
	return nil
}

func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, string(key))
	return nil
}

func (m *Memory) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[string(key)]
	return ok, nil
}

// ForEach iterates in sorted key order so results are deterministic.
func (m *Memory) ForEach(prefix []byte, fn func(key, value []byte) bool) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		m.mu.RLock()
		value, ok := m.items[k]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		if !fn([]byte(k), value) {
			return nil
		}
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
