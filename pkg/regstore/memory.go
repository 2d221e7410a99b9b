package regstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]string
	// SetErr, when non-nil, is returned by every Set.
	SetErr error
}

// NewMemory returns a Memory seeded with values.
func NewMemory(values map[Key]string) *Memory {
	m := &Memory{values: make(map[Key]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Memory) Get(_ context.Context, key Key) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "memory: %s", key)
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key Key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
