package queue

import (
	"context"
	"sync"
)

// Memory is a FIFO for single-process deployments. Items are lost on restart;
// their jobs are still in the database and the recovery pass re-enqueues them.
type Memory struct {
	mu    sync.Mutex
	items []Item
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Enqueue(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, item)

	return nil
}

func (m *Memory) Dequeue(_ context.Context) (Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 {
		return Item{}, false, nil
	}

	item := m.items[0]
	m.items[0] = Item{}
	m.items = m.items[1:]

	return item, true, nil
}

// Ack is a no-op; Dequeue already removed the item.
func (m *Memory) Ack(_ context.Context, _ Item) error {
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}
