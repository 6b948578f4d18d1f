// Package store provides TokenStore backings for the session store: an
// in-memory map for tests and a Bun-backed sqlite table for durable use.
package store

import (
	"context"
	"sync"
)

// Memory is a volatile TokenStore. Useful for tests and for callers that
// explicitly opt out of persisting credentials.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory token store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

// Seed returns an in-memory store preloaded with the given values.
func Seed(values map[string]string) *Memory {
	m := NewMemory()
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
