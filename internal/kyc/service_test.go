package kyc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/laxo-exchange/laxo/internal/identity"
)

type fakeDirectory struct {
	mu       sync.Mutex
	statuses map[string][]string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{statuses: make(map[string][]string)}
}

func (d *fakeDirectory) UpdateStatus(_ context.Context, id, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[id] = append(d.statuses[id], status)
	return nil
}

func (d *fakeDirectory) last(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	history := d.statuses[id]
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1]
}

func newTestService(dir *fakeDirectory) *Service {
	return NewService(NewMemoryRepository(), dir, DefaultReviewPeriod)
}

func validInput() SubmitInput {
	return SubmitInput{
		DocumentType:   "passport",
		DocumentNumber: "X1234567",
		FullName:       "Ada Lovelace",
		DateOfBirth:    "1990-12-10",
		Address:        "12 Analytical Row",
	}
}

func TestSubmitMovesAccountToPending(t *testing.T) {
	dir := newFakeDirectory()
	svc := newTestService(dir)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, "acct-1", validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != StatusPending {
		t.Fatalf("expected pending, got %s", sub.Status)
	}
	if want := sub.SubmittedAt.Add(DefaultReviewPeriod); !sub.ApproveAt.Equal(want) {
		t.Fatalf("expected approval scheduled at %v, got %v", want, sub.ApproveAt)
	}
	if dir.last("acct-1") != identity.StatusKYCPending {
		t.Fatalf("expected account kyc_pending, got %q", dir.last("acct-1"))
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	svc := newTestService(newFakeDirectory())
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "acct-1", validInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, "acct-1", validInput()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected already submitted, got %v", err)
	}
}

func TestSubmitIncompleteDetails(t *testing.T) {
	svc := newTestService(newFakeDirectory())
	input := validInput()
	input.DocumentNumber = "  "
	if _, err := svc.Submit(context.Background(), "acct-1", input); !errors.Is(err, ErrIncompleteDetails) {
		t.Fatalf("expected incomplete details, got %v", err)
	}
}

func TestStatusAutoApprovesAfterReviewPeriod(t *testing.T) {
	dir := newFakeDirectory()
	svc := newTestService(dir)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if _, err := svc.Submit(ctx, "acct-1", validInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Still inside the review window.
	svc.now = func() time.Time { return base.Add(DefaultReviewPeriod - time.Second) }
	sub, err := svc.Status(ctx, "acct-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if sub.Status != StatusPending {
		t.Fatalf("expected still pending, got %s", sub.Status)
	}

	svc.now = func() time.Time { return base.Add(DefaultReviewPeriod) }
	sub, err = svc.Status(ctx, "acct-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if sub.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", sub.Status)
	}
	if dir.last("acct-1") != identity.StatusKYCVerified {
		t.Fatalf("expected account kyc_verified, got %q", dir.last("acct-1"))
	}
}

func TestStatusApprovesOnce(t *testing.T) {
	dir := newFakeDirectory()
	svc := newTestService(dir)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.Submit(ctx, "acct-1", validInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	svc.now = func() time.Time { return base.Add(time.Hour) }
	for i := 0; i < 3; i++ {
		if _, err := svc.Status(ctx, "acct-1"); err != nil {
			t.Fatalf("status: %v", err)
		}
	}

	verified := 0
	for _, status := range dir.statuses["acct-1"] {
		if status == identity.StatusKYCVerified {
			verified++
		}
	}
	if verified != 1 {
		t.Fatalf("expected one verification transition, got %d", verified)
	}
}

type failingLookupRepository struct {
	Repository
	err error
}

func (r *failingLookupRepository) FindByAccount(context.Context, string) (Submission, error) {
	return Submission{}, r.err
}

func TestSubmitPropagatesLookupFailure(t *testing.T) {
	lookupErr := errors.New("connection reset")
	mem := NewMemoryRepository()
	repo := &failingLookupRepository{Repository: mem, err: lookupErr}
	svc := NewService(repo, newFakeDirectory(), DefaultReviewPeriod)

	if _, err := svc.Submit(context.Background(), "acct-1", validInput()); !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup failure, got %v", err)
	}
	if _, err := mem.FindByAccount(context.Background(), "acct-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no submission recorded, got %v", err)
	}
}

func TestStatusUnknownAccount(t *testing.T) {
	svc := newTestService(newFakeDirectory())
	if _, err := svc.Status(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
