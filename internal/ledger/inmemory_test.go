package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestEnsureWalletsProvisionsAllAssets(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()

	if err := s.EnsureWallets(ctx, account); err != nil {
		t.Fatalf("ensure wallets: %v", err)
	}

	for _, asset := range SupportedAssets {
		w, err := s.Get(ctx, account, asset)
		if err != nil {
			t.Fatalf("get %s: %v", asset, err)
		}
		if !w.Balance.IsZero() || !w.Available.IsZero() {
			t.Fatalf("expected zeroed wallet for %s, got %s/%s", asset, w.Balance, w.Available)
		}
	}

	if _, err := s.Get(ctx, account, "DOGE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unsupported asset, got %v", err)
	}
}

func TestReserveLeavesBalanceUntouched(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(100))

	w, err := s.Reserve(ctx, account, "USDT", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !w.Available.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected available 70, got %s", w.Available)
	}
	if !w.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", w.Balance)
	}
}

func TestReserveInsufficientFunds(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(10))

	if _, err := s.Reserve(ctx, account, "USDT", decimal.NewFromInt(11)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	w, _ := s.Get(ctx, account, "USDT")
	if !w.Available.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("failed reserve must not mutate available, got %s", w.Available)
	}
}

func TestSettleDebitAfterReserve(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(100))

	if _, err := s.Reserve(ctx, account, "USDT", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	w, err := s.SettleDebit(ctx, account, "USDT", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("settle debit: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(70)) || !w.Available.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 70/70 after settlement, got %s/%s", w.Balance, w.Available)
	}
}

func TestSettleDebitRequiresReservation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(100))

	// Nothing reserved: settling would push available above balance.
	if _, err := s.SettleDebit(ctx, account, "USDT", decimal.NewFromInt(30)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds without a reservation, got %v", err)
	}

	w, _ := s.Get(ctx, account, "USDT")
	if !w.Balance.Equal(decimal.NewFromInt(100)) || !w.Available.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("failed settle must not mutate the wallet, got %s/%s", w.Balance, w.Available)
	}
}

func TestReleaseRestoresAvailable(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(100))

	if _, err := s.Reserve(ctx, account, "USDT", decimal.NewFromInt(30)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	w, err := s.Release(ctx, account, "USDT", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(100)) || !w.Available.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100/100 after release, got %s/%s", w.Balance, w.Available)
	}
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	s.EnsureWallets(ctx, account)

	if _, err := s.Credit(ctx, account, "BTC", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero, got %v", err)
	}
	if _, err := s.Credit(ctx, account, "BTC", decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative, got %v", err)
	}
}

func TestSwapMovesBothLegsAtomically(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	s.EnsureWallets(ctx, account)
	Seed(s, account, "USDT", decimal.NewFromInt(100_000))

	res, err := s.Swap(ctx,
		Leg{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(50_000)},
		Leg{AccountID: account, Asset: "BTC", Amount: decimal.NewFromInt(1)},
	)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if !res.Debited.Balance.Equal(decimal.NewFromInt(50_000)) || !res.Debited.Available.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("unexpected debit leg: %s/%s", res.Debited.Balance, res.Debited.Available)
	}
	if !res.Credited.Balance.Equal(decimal.NewFromInt(1)) || !res.Credited.Available.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected credit leg: %s/%s", res.Credited.Balance, res.Credited.Available)
	}
}

func TestSwapSameWalletConservesValue(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(100))

	res, err := s.Swap(ctx,
		Leg{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(40)},
		Leg{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(40)},
	)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if !res.Debited.Balance.Equal(decimal.NewFromInt(100)) || !res.Credited.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected both legs to report 100, got %s/%s", res.Debited.Balance, res.Credited.Balance)
	}

	w, _ := s.Get(ctx, account, "USDT")
	if !w.Balance.Equal(decimal.NewFromInt(100)) || !w.Available.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("value not conserved: balance=%s available=%s", w.Balance, w.Available)
	}
}

func TestSwapSameWalletInsufficientFunds(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(10))

	_, err := s.Swap(ctx,
		Leg{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(40)},
		Leg{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(40)},
	)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestSwapInsufficientFundsLeavesBothWallets(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	s.EnsureWallets(ctx, account)
	Seed(s, account, "USDT", decimal.NewFromInt(10))

	_, err := s.Swap(ctx,
		Leg{AccountID: account, Asset: "USDT", Amount: decimal.NewFromInt(50)},
		Leg{AccountID: account, Asset: "ETH", Amount: decimal.NewFromInt(1)},
	)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	usdt, _ := s.Get(ctx, account, "USDT")
	eth, _ := s.Get(ctx, account, "ETH")
	if !usdt.Balance.Equal(decimal.NewFromInt(10)) || !eth.Balance.IsZero() {
		t.Fatalf("failed swap must leave both wallets untouched: usdt=%s eth=%s", usdt.Balance, eth.Balance)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	Seed(s, account, "USDT", decimal.NewFromInt(100))

	const workers = 20
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Reserve(ctx, account, "USDT", amount); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 reservations of 10 against 100, got %d", succeeded)
	}
	w, _ := s.Get(ctx, account, "USDT")
	if !w.Available.IsZero() || !w.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected wallet after concurrent reserves: %s/%s", w.Balance, w.Available)
	}
}

func TestConcurrentSwapsConserveValue(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	account := uuid.NewString()
	s.EnsureWallets(ctx, account)
	Seed(s, account, "USDT", decimal.NewFromInt(10_000))

	price := decimal.NewFromInt(100)
	const workers = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Swap(ctx,
				Leg{AccountID: account, Asset: "USDT", Amount: price},
				Leg{AccountID: account, Asset: "ETH", Amount: decimal.NewFromInt(1)},
			)
			if err != nil {
				t.Errorf("swap failed: %v", err)
			}
		}()
	}
	wg.Wait()

	usdt, _ := s.Get(ctx, account, "USDT")
	eth, _ := s.Get(ctx, account, "ETH")
	total := usdt.Balance.Add(eth.Balance.Mul(price))
	if !total.Equal(decimal.NewFromInt(10_000)) {
		t.Fatalf("value not conserved at execution price, total=%s", total)
	}
}
