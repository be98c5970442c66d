package repository

import (
	"context"
	"sync"

	apperrors "github.com/paiban/oncall/pkg/errors"
)

// MemoryResultStore 内存结果仓储，用于开发和测试
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string]*StoredResult
	order   []string
}

// NewMemoryResultStore 创建内存仓储
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[string]*StoredResult)}
}

// Save 保存结果
func (s *MemoryResultStore) Save(_ context.Context, r *StoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.results[r.ID] = r
	return nil
}

// Get 根据ID获取结果
func (s *MemoryResultStore) Get(_ context.Context, id string) (*StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[id]
	if !ok {
		return nil, apperrors.NotFound("值班表", id)
	}
	return r, nil
}

// List 按保存顺序倒序列出
func (s *MemoryResultStore) List(_ context.Context, filter ListFilter) ([]*ResultSummary, int, error) {
	filter = filter.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.order)
	var list []*ResultSummary
	for i := total - 1 - filter.Offset; i >= 0 && len(list) < filter.Limit; i-- {
		list = append(list, summarize(s.results[s.order[i]]))
	}
	return list, total, nil
}
