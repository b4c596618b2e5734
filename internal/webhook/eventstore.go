package webhook

import (
	"context"
	"sync"
)

// EventStore records gateway event ids so duplicate webhook deliveries are
// acknowledged without being reprocessed.
type EventStore interface {
	// MarkProcessed claims an event id. Returns true if this call was the
	// first to see it.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// MemoryStore is a bounded in-process event store. Suitable for a single
// instance; multi-instance deployments need the DynamoDB or Redis store.
type MemoryStore struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	max   int
}

// NewMemoryStore creates a MemoryStore holding at most max event ids. The
// oldest id is evicted when the bound is reached.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 1000
	}
	return &MemoryStore{
		seen: make(map[string]struct{}, max),
		max:  max,
	}
}

func (m *MemoryStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[eventID]; ok {
		return false, nil
	}
	if len(m.order) >= m.max {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.seen, oldest)
	}
	m.seen[eventID] = struct{}{}
	m.order = append(m.order, eventID)
	return true, nil
}
