package extraction

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo used in tests and when no database is
// configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{results: make(map[string]Result)}
}

func (r *MemoryRepo) Upsert(_ context.Context, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.DocumentID] = result
	return nil
}

func (r *MemoryRepo) GetByDocument(_ context.Context, documentID string) (Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[documentID]
	if !ok {
		return Result{}, ErrNoResult
	}
	return result, nil
}

var _ Repo = (*MemoryRepo)(nil)
