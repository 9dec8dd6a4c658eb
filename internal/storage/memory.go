package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a ResultStore held in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]*Submission
	seq     int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]*Submission)}
}

func (m *MemoryStore) SaveResult(ctx context.Context, s *Submission) error {
	if s.ResultID == "" {
		return fmt.Errorf("result id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	if existing, ok := m.results[s.ResultID]; ok {
		cp.ID = existing.ID
	} else if cp.ID == "" {
		m.seq++
		cp.ID = fmt.Sprintf("mem-%06d", m.seq)
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.ID = cp.ID
	m.results[s.ResultID] = &cp
	return nil
}

func (m *MemoryStore) GetResult(ctx context.Context, resultID string) (*Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.results[resultID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) ListResults(ctx context.Context, filter *ResultFilter) ([]*Submission, error) {
	m.mu.RLock()
	var out []*Submission
	for _, s := range m.results {
		if filter.Matches(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(out) {
				return nil, nil
			}
			out = out[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(out) {
			out = out[:filter.Limit]
		}
	}
	return out, nil
}

func (m *MemoryStore) CountResults(ctx context.Context, filter *ResultFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, s := range m.results {
		if filter.Matches(s) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
