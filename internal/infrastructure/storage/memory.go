package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. Values are copied on the way in and out.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]Record
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		buckets: make(map[string]map[string]Record),
		now:     time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string]Record)
		m.buckets[bucket] = b
	}
	b[key] = Record{Key: key, Value: clone(value), UpdatedAt: m.now()}
	return nil
}

func (m *Memory) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.buckets[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r.Value), nil
}

func (m *Memory) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buckets[bucket][key]; !ok {
		return ErrNotFound
	}
	delete(m.buckets[bucket], key)
	return nil
}

func (m *Memory) List(ctx context.Context, bucket string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.buckets[bucket]))
	for _, r := range m.buckets[bucket] {
		r.Value = clone(r.Value)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) Close() error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
