package withdrawals

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu          sync.Mutex
	withdrawals map[string]Withdrawal
}

// NewMemoryRepository constructs an in-memory withdrawal repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{withdrawals: make(map[string]Withdrawal)}
}

func (r *memoryRepository) Create(_ context.Context, wd Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.withdrawals[wd.ID]; exists {
		return errors.New("withdrawal exists")
	}
	r.withdrawals[wd.ID] = wd
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wd, ok := r.withdrawals[id]
	if !ok {
		return Withdrawal{}, ErrNotFound
	}
	return wd, nil
}

func (r *memoryRepository) Decide(_ context.Context, id, status string, at time.Time) (Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wd, ok := r.withdrawals[id]
	if !ok {
		return Withdrawal{}, ErrNotFound
	}
	if wd.Status != StatusCreated {
		return Withdrawal{}, ErrAlreadyDecided
	}
	wd.Status = status
	wd.DecidedAt = at.UTC()
	r.withdrawals[id] = wd
	return wd, nil
}

func (r *memoryRepository) Reopen(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wd, ok := r.withdrawals[id]
	if !ok {
		return ErrNotFound
	}
	wd.Status = StatusCreated
	wd.DecidedAt = time.Time{}
	r.withdrawals[id] = wd
	return nil
}

func (r *memoryRepository) ListByAccount(_ context.Context, accountID string) ([]Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Withdrawal
	for _, wd := range r.withdrawals {
		if wd.AccountID == accountID {
			out = append(out, wd)
		}
	}
	return out, nil
}
