package store

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local RecordStore.
type Memory struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.records) + 1)
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *Memory) ScanAll(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) Close() error { return nil }
