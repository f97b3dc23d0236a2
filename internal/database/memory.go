package database

import (
	"sort"
	"strings"
	"sync"
)

// MemoryKV is an in-memory KV used for tests and ephemeral sessions.
// It preserves insertion order for prefix scans, matching the SQL-backed
// store's seq ordering.
type MemoryKV struct {
	mu    sync.Mutex
	data  map[string][]byte
	order map[string]int
	next  int
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data:  make(map[string][]byte),
		order: make(map[string]int),
	}
}

// Get returns the value stored at key, or (nil, nil) when the key is absent
func (m *MemoryKV) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value at key, overwriting any previous value. Overwrites keep
// the key's original insertion position.
func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.set(key, value)
	return nil
}

func (m *MemoryKV) set(key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	if _, ok := m.data[key]; !ok {
		m.order[key] = m.next
		m.next++
	}
	m.data[key] = stored
}

// Delete removes the entry at key and reports whether one was removed
func (m *MemoryKV) Delete(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return false, nil
	}
	delete(m.data, key)
	delete(m.order, key)
	return true, nil
}

// ListKeysWithPrefix returns all keys starting with prefix, in insertion order
func (m *MemoryKV) ListKeysWithPrefix(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return m.order[keys[i]] < m.order[keys[j]]
	})
	return keys, nil
}

// BeginBatch opens a staged batch that applies on Commit
func (m *MemoryKV) BeginBatch() (Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &MemoryKV{
		data:  make(map[string][]byte, len(m.data)),
		order: make(map[string]int, len(m.order)),
		next:  m.next,
	}
	for key, value := range m.data {
		copied := make([]byte, len(value))
		copy(copied, value)
		staged.data[key] = copied
		staged.order[key] = m.order[key]
	}
	return &memoryBatch{parent: m, staged: staged}, nil
}

// memoryBatch stages writes against a copy and swaps it in on Commit
type memoryBatch struct {
	parent *MemoryKV
	staged *MemoryKV
	done   bool
}

func (b *memoryBatch) Get(key string) ([]byte, error)  { return b.staged.Get(key) }
func (b *memoryBatch) Set(key string, v []byte) error  { return b.staged.Set(key, v) }
func (b *memoryBatch) Delete(key string) (bool, error) { return b.staged.Delete(key) }

func (b *memoryBatch) ListKeysWithPrefix(prefix string) ([]string, error) {
	return b.staged.ListKeysWithPrefix(prefix)
}

func (b *memoryBatch) Commit() error {
	if b.done {
		return nil
	}
	b.done = true

	b.parent.mu.Lock()
	defer b.parent.mu.Unlock()
	b.parent.data = b.staged.data
	b.parent.order = b.staged.order
	b.parent.next = b.staged.next
	return nil
}

func (b *memoryBatch) Rollback() error {
	b.done = true
	return nil
}
