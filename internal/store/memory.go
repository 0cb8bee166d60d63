package store

import (
	"context"
	"sync"
)

// Memory is an in-process store used by tests and the memory driver.
type Memory struct {
	mu          sync.Mutex
	collections map[string][][]byte
	sequences   map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		collections: map[string][][]byte{},
		sequences:   map[string]int64{},
	}
}

func (m *Memory) GetCollection(_ context.Context, name string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[name]
	out := make([][]byte, len(docs))
	copy(out, docs)
	return out, nil
}

func (m *Memory) SaveCollection(_ context.Context, name string, docs [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([][]byte, len(docs))
	copy(stored, docs)
	m.collections[name] = stored
	return nil
}

func (m *Memory) NextID(_ context.Context, sequence string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[sequence]++
	return m.sequences[sequence], nil
}

func (m *Memory) Close() error {
	return nil
}
