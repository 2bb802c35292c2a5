package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Memory — окна в памяти процесса. Используется, когда Redis не настроен;
// счётчики не разделяются между репликами.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemory создаёт пустой лимитер.
func NewMemory() *Memory {
	return &Memory{windows: make(map[string]*window), now: time.Now}
}

// Allow — та же семантика, что у Redis.Allow.
func (m *Memory) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(win)}
		m.windows[key] = w
		m.gc(now)
	}
	w.count++

	return w.count <= limit, nil
}

// gc убирает истёкшие окна; вызывается только при открытии нового окна.
func (m *Memory) gc(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
