// Package store provides snapshot persistence for the ledger: an opaque
// load/save byte contract with memory, file, and SQLite backends. What the
// bytes contain is the codec package's business.
package store

import (
	"context"
	"sync"
)

// Store is the abstract persistence capability the ledger writes through
// after every mutation. Load returns nil bytes (not an error) when nothing
// has been persisted yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Memory keeps the snapshot in process memory. Used by tests and as the
// throwaway default backend.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates a memory store, optionally pre-seeded with a snapshot.
func NewMemory(seed []byte) *Memory {
	m := &Memory{}
	if len(seed) > 0 {
		m.data = append([]byte(nil), seed...)
	}
	return m
}

func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}
