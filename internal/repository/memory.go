package repository

import (
	"context"
	"sync"

	"github.com/MHostile/root-automated-setup/internal/setup"
)

// Memory keeps encoded sessions in process memory
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	order []string
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Save implements Repository
func (m *Memory) Save(ctx context.Context, id string, state *setup.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := Encode(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeFromOrder(id)
	m.blobs[id] = blob
	m.order = append(m.order, id)
	return nil
}

// Load implements Repository
func (m *Memory) Load(ctx context.Context, id string) (*setup.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	blob, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(blob)
}

// Delete implements Repository
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	m.removeFromOrder(id)
	return nil
}

// List implements Repository
func (m *Memory) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...), nil
}

// Close implements Repository
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) removeFromOrder(id string) {
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
