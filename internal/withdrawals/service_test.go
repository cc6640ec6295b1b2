package withdrawals

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/identity"
	"github.com/laxo-exchange/laxo/internal/ledger"
)

var admin = Actor{AccountID: uuid.NewString(), Admin: true}

func newTestService(balance int64) (*Service, ledger.Store, string) {
	wallets := ledger.NewInMemory()
	account := uuid.NewString()
	ledger.Seed(wallets, account, "USDT", decimal.NewFromInt(balance))
	return NewService(NewMemoryRepository(), wallets, nil), wallets, account
}

func TestCreateReservesFunds(t *testing.T) {
	svc, wallets, account := newTestService(100)
	ctx := context.Background()

	wd, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(30), Destination: "dest-1"})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if wd.Status != StatusCreated {
		t.Fatalf("expected created, got %s", wd.Status)
	}

	w, _ := wallets.Get(ctx, account, "USDT")
	if !w.Balance.Equal(decimal.NewFromInt(100)) || !w.Available.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 100/70 after reservation, got %s/%s", w.Balance, w.Available)
	}
}

func TestCreateInsufficientFundsLeavesNoRecord(t *testing.T) {
	svc, _, account := newTestService(10)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(50)})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	wds, _ := svc.ListByAccount(ctx, account)
	if len(wds) != 0 {
		t.Fatalf("no record must exist after a failed reservation, got %d", len(wds))
	}
}

func TestApproveSettlesDebit(t *testing.T) {
	svc, wallets, account := newTestService(100)
	ctx := context.Background()

	wd, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(30)})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	decided, err := svc.Decide(ctx, wd.ID, true, admin)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decided.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", decided.Status)
	}

	w, _ := wallets.Get(ctx, account, "USDT")
	if !w.Balance.Equal(decimal.NewFromInt(70)) || !w.Available.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 70/70 after approval, got %s/%s", w.Balance, w.Available)
	}
}

func TestRejectReleasesReservation(t *testing.T) {
	svc, wallets, account := newTestService(100)
	ctx := context.Background()

	wd, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(30)})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	decided, err := svc.Decide(ctx, wd.ID, false, admin)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decided.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", decided.Status)
	}

	w, _ := wallets.Get(ctx, account, "USDT")
	if !w.Balance.Equal(decimal.NewFromInt(100)) || !w.Available.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100/100 after rejection, got %s/%s", w.Balance, w.Available)
	}
}

func TestDecideIsSingleShot(t *testing.T) {
	svc, wallets, account := newTestService(100)
	ctx := context.Background()

	wd, _ := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(30)})
	if _, err := svc.Decide(ctx, wd.ID, true, admin); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	if _, err := svc.Decide(ctx, wd.ID, true, admin); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected already decided, got %v", err)
	}

	w, _ := wallets.Get(ctx, account, "USDT")
	if !w.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("second decision must not mutate the wallet again, balance=%s", w.Balance)
	}
}

func TestDecideRequiresAdmin(t *testing.T) {
	svc, _, account := newTestService(100)
	ctx := context.Background()

	wd, _ := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(30)})

	if _, err := svc.Decide(ctx, wd.ID, true, Actor{AccountID: account}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBootstrappedAdminCanDecide(t *testing.T) {
	wallets := ledger.NewInMemory()
	ids := identity.NewService(identity.NewMemoryRepository(), wallets)
	svc := NewService(NewMemoryRepository(), wallets, nil)
	ctx := context.Background()

	root, err := ids.BootstrapAdmin(ctx, identity.RegisterInput{Email: "root@laxo.example", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	customer, err := ids.Register(ctx, identity.RegisterInput{Email: "customer@laxo.example", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	ledger.Seed(wallets, customer.ID, "USDT", decimal.NewFromInt(100))

	wd, err := svc.Create(ctx, CreateInput{AccountID: customer.ID, Asset: "USDT", Amount: decimal.NewFromInt(30)})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	decided, err := svc.Decide(ctx, wd.ID, true, Actor{AccountID: root.ID, Admin: root.Admin})
	if err != nil {
		t.Fatalf("decide as bootstrapped admin: %v", err)
	}
	if decided.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", decided.Status)
	}
}

func TestDecideUnknownWithdrawal(t *testing.T) {
	svc, _, _ := newTestService(100)

	if _, err := svc.Decide(context.Background(), uuid.NewString(), true, admin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentCreatesRespectAvailable(t *testing.T) {
	svc, wallets, account := newTestService(100)
	ctx := context.Background()

	const workers = 20
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "USDT", Amount: amount}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("reservations must sum to at most available: got %d successes", succeeded)
	}
	w, _ := wallets.Get(ctx, account, "USDT")
	if w.Available.Sign() < 0 {
		t.Fatalf("available went negative: %s", w.Available)
	}
}
