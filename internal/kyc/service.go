package kyc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laxo-exchange/laxo/internal/identity"
)

// DefaultReviewPeriod is how long a submission stays pending before it
// auto-approves.
const DefaultReviewPeriod = 2 * time.Minute

// AccountDirectory moves accounts through the verification lifecycle.
type AccountDirectory interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

// Service runs the review workflow. There is no human reviewer: a submission
// auto-approves once its review period has elapsed, observed lazily on the
// next status read.
type Service struct {
	repo         Repository
	accounts     AccountDirectory
	reviewPeriod time.Duration
	now          func() time.Time
}

// NewService builds a KYC service with the given review period.
func NewService(repo Repository, accounts AccountDirectory, reviewPeriod time.Duration) *Service {
	if reviewPeriod <= 0 {
		reviewPeriod = DefaultReviewPeriod
	}
	return &Service{repo: repo, accounts: accounts, reviewPeriod: reviewPeriod, now: time.Now}
}

// SubmitInput carries the document details for a submission.
type SubmitInput struct {
	DocumentType   string
	DocumentNumber string
	FullName       string
	DateOfBirth    string
	Address        string
}

// Submit records a pending submission and moves the account to kyc_pending.
func (s *Service) Submit(ctx context.Context, accountID string, input SubmitInput) (Submission, error) {
	input.DocumentType = strings.TrimSpace(input.DocumentType)
	input.DocumentNumber = strings.TrimSpace(input.DocumentNumber)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.DocumentType == "" || input.DocumentNumber == "" || input.FullName == "" {
		return Submission{}, ErrIncompleteDetails
	}
	existing, err := s.repo.FindByAccount(ctx, accountID)
	switch {
	case err == nil:
		if existing.Status == StatusPending || existing.Status == StatusApproved {
			return Submission{}, ErrAlreadySubmitted
		}
	case !errors.Is(err, ErrNotFound):
		return Submission{}, err
	}

	now := s.now().UTC()
	sub := Submission{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		FullName:       input.FullName,
		DateOfBirth:    input.DateOfBirth,
		Address:        input.Address,
		Status:         StatusPending,
		SubmittedAt:    now,
		ApproveAt:      now.Add(s.reviewPeriod),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return Submission{}, err
	}
	if err := s.accounts.UpdateStatus(ctx, accountID, identity.StatusKYCPending); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Status returns the account's latest submission, approving it first when the
// review period has elapsed. The atomic repository transition keeps concurrent
// readers from verifying the account twice.
func (s *Service) Status(ctx context.Context, accountID string) (Submission, error) {
	sub, err := s.repo.FindByAccount(ctx, accountID)
	if err != nil {
		return Submission{}, err
	}
	if sub.Status != StatusPending || s.now().Before(sub.ApproveAt) {
		return sub, nil
	}

	transitioned, err := s.repo.Approve(ctx, sub.ID, s.now())
	if err != nil {
		return Submission{}, err
	}
	if transitioned {
		if err := s.accounts.UpdateStatus(ctx, accountID, identity.StatusKYCVerified); err != nil {
			return Submission{}, err
		}
	}
	return s.repo.FindByAccount(ctx, accountID)
}
