// Package recent keeps the most recently asked queries, newest first.
package recent

import (
	"context"
	"strings"
	"sync"
)

// List records queries and returns them newest first. Adding a query that is
// already present moves it to the front; adding beyond capacity evicts the
// oldest entry.
type List interface {
	Add(ctx context.Context, query string) error
	Items(ctx context.Context) ([]string, error)
}

// Deque is an in-memory bounded List.
type Deque struct {
	mu       sync.Mutex
	capacity int
	items    []string
}

func NewDeque(capacity int) *Deque {
	if capacity < 1 {
		capacity = 1
	}
	return &Deque{capacity: capacity, items: make([]string, 0, capacity)}
}

func (d *Deque) Add(_ context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, q := range d.items {
		if q == query {
			d.items = append(d.items[:i], d.items[i+1:]...)
			break
		}
	}
	if len(d.items) == d.capacity {
		d.items = d.items[:d.capacity-1]
	}
	d.items = append(d.items, "")
	copy(d.items[1:], d.items)
	d.items[0] = query
	return nil
}

func (d *Deque) Items(_ context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.items...), nil
}
