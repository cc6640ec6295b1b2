package kyc

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu          sync.Mutex
	submissions map[string]Submission
}

// NewMemoryRepository constructs an in-memory KYC repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{submissions: make(map[string]Submission)}
}

func (r *memoryRepository) Create(_ context.Context, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.submissions[sub.ID]; exists {
		return errors.New("submission exists")
	}
	r.submissions[sub.ID] = sub
	return nil
}

func (r *memoryRepository) FindByAccount(_ context.Context, accountID string) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		latest Submission
		found  bool
	)
	for _, sub := range r.submissions {
		if sub.AccountID != accountID {
			continue
		}
		if !found || sub.SubmittedAt.After(latest.SubmittedAt) {
			latest = sub
			found = true
		}
	}
	if !found {
		return Submission{}, ErrNotFound
	}
	return latest, nil
}

func (r *memoryRepository) Approve(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return false, ErrNotFound
	}
	if sub.Status != StatusPending {
		return false, nil
	}
	sub.Status = StatusApproved
	sub.DecidedAt = at.UTC()
	r.submissions[id] = sub
	return true, nil
}
