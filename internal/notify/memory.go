package notify

import (
	"context"
	"sync"
)

// MemoryContainer keeps toasts in process memory.
type MemoryContainer struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewMemoryContainer returns an empty container.
func NewMemoryContainer() *MemoryContainer {
	return &MemoryContainer{}
}

// Append implements Container.
func (m *MemoryContainer) Append(ctx context.Context, toast Toast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, toast)
	return nil
}

// Update implements Container. Unknown toasts are ignored.
func (m *MemoryContainer) Update(ctx context.Context, toast Toast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.toasts {
		if m.toasts[i].ID == toast.ID {
			m.toasts[i] = toast
			return nil
		}
	}
	return nil
}

// Remove implements Container.
func (m *MemoryContainer) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.toasts {
		if m.toasts[i].ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return nil
		}
	}
	return nil
}

// List implements Container, oldest first.
func (m *MemoryContainer) List(ctx context.Context) ([]Toast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out, nil
}
