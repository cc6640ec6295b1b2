package deposits

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
)

func newTestService(confirmer Confirmer) (*Service, ledger.Store, string) {
	wallets := ledger.NewInMemory()
	account := uuid.NewString()
	wallets.EnsureWallets(context.Background(), account)
	svc := NewService(NewMemoryRepository(), wallets, confirmer, nil, nil)
	return svc, wallets, account
}

func TestCreateConfirmsAndCredits(t *testing.T) {
	svc, wallets, account := newTestService(nil)
	ctx := context.Background()

	dep, err := svc.Create(ctx, CreateInput{
		AccountID:   account,
		Asset:       "USDT",
		Amount:      decimal.NewFromInt(500),
		Destination: "payments@laxo.example",
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	if dep.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", dep.Status)
	}

	w, err := wallets.Get(ctx, account, "USDT")
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(500)) || !w.Available.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected 500/500 after credit, got %s/%s", w.Balance, w.Available)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, wallets, account := newTestService(nil)
	ctx := context.Background()

	dep, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "BTC", Amount: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	// Retry the approval; the wallet must be credited exactly once.
	again, err := svc.Approve(ctx, dep.ID)
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if again.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", again.Status)
	}

	w, _ := wallets.Get(ctx, account, "BTC")
	if !w.Balance.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected single credit of 2, got %s", w.Balance)
	}
}

type decliningConfirmer struct{}

func (decliningConfirmer) Confirm(context.Context, Deposit) (Confirmation, error) {
	return Confirmation{Confirmed: false}, nil
}

func TestDeclinedConfirmationRejectsWithoutCredit(t *testing.T) {
	svc, wallets, account := newTestService(decliningConfirmer{})
	ctx := context.Background()

	dep, err := svc.Create(ctx, CreateInput{AccountID: account, Asset: "ETH", Amount: decimal.NewFromInt(3)})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	if dep.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", dep.Status)
	}

	w, _ := wallets.Get(ctx, account, "ETH")
	if !w.Balance.IsZero() {
		t.Fatalf("rejected deposit must not credit, got %s", w.Balance)
	}
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, _, account := newTestService(nil)

	_, err := svc.Create(context.Background(), CreateInput{AccountID: account, Asset: "USDT", Amount: decimal.Zero})
	if !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}
