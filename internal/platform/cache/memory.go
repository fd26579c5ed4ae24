package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a process-local Store with lazy expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.data, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &entry{data: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
	return nil
}

// StartCleanup removes expired entries every interval until ctx is done.
func (m *Memory) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				now := m.now()
				for k, e := range m.entries {
					if now.After(e.expiresAt) {
						delete(m.entries, k)
					}
				}
				m.mu.Unlock()
			}
		}
	}()
}

// Len reports the number of entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
