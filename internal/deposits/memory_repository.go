package deposits

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.Mutex
	deposits map[string]Deposit
}

// NewMemoryRepository constructs an in-memory deposit repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{deposits: make(map[string]Deposit)}
}

func (r *memoryRepository) Create(_ context.Context, dep Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.deposits[dep.ID]; exists {
		return errors.New("deposit exists")
	}
	r.deposits[dep.ID] = dep
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dep, ok := r.deposits[id]
	if !ok {
		return Deposit{}, ErrNotFound
	}
	return dep, nil
}

func (r *memoryRepository) Decide(_ context.Context, id, status string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dep, ok := r.deposits[id]
	if !ok {
		return false, ErrNotFound
	}
	if dep.Status != StatusCreated {
		return false, nil
	}
	dep.Status = status
	dep.DecidedAt = at.UTC()
	r.deposits[id] = dep
	return true, nil
}

func (r *memoryRepository) ListByAccount(_ context.Context, accountID string) ([]Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Deposit
	for _, dep := range r.deposits {
		if dep.AccountID == accountID {
			out = append(out, dep)
		}
	}
	return out, nil
}
