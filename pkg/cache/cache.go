// Package cache provides the expiring stores shared by the data services.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache stores encoded values under string keys for a fixed time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// GetJSON looks key up and decodes it into dst. A value that no longer
// decodes is reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, dst any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON encodes v and stores it under key. Values that cannot be encoded
// are not stored.
func SetJSON(ctx context.Context, c Cache, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, raw)
}

type entry struct {
	value  []byte
	stored time.Time
}

// Memory is an in-process cache. Concurrent writers to the same key are
// resolved last-writer-wins.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// NewMemory creates a cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// WithClock replaces the time source, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.stored) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: stored, stored: m.now()}
}
