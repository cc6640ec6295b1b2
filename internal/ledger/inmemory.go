package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type inMemoryStore struct {
	mu      sync.Mutex
	wallets map[string]Wallet
}

// NewInMemory creates a concurrency-safe in-memory wallet store. Used in tests
// and when the service runs without Postgres in development.
func NewInMemory() Store {
	return &inMemoryStore{wallets: make(map[string]Wallet)}
}

func (s *inMemoryStore) EnsureWallets(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, asset := range SupportedAssets {
		key := Key(accountID, asset)
		if _, exists := s.wallets[key]; !exists {
			s.wallets[key] = Wallet{
				AccountID: accountID,
				Asset:     asset,
				Balance:   decimal.Zero,
				Available: decimal.Zero,
				UpdatedAt: time.Now().UTC(),
			}
		}
	}
	return nil
}

func (s *inMemoryStore) Get(_ context.Context, accountID, asset string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[Key(accountID, asset)]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (s *inMemoryStore) Credit(_ context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(accountID, asset)
	w, ok := s.wallets[key]
	if !ok {
		return Wallet{}, ErrNotFound
	}

	w.Balance = w.Balance.Add(amount)
	w.Available = w.Available.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	s.wallets[key] = w
	return w, nil
}

func (s *inMemoryStore) Reserve(_ context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(accountID, asset)
	w, ok := s.wallets[key]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	if w.Available.LessThan(amount) {
		return Wallet{}, ErrInsufficientFunds
	}

	w.Available = w.Available.Sub(amount)
	w.UpdatedAt = time.Now().UTC()
	s.wallets[key] = w
	return w, nil
}

func (s *inMemoryStore) Release(_ context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(accountID, asset)
	w, ok := s.wallets[key]
	if !ok {
		return Wallet{}, ErrNotFound
	}

	w.Available = w.Available.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	s.wallets[key] = w
	return w, nil
}

func (s *inMemoryStore) SettleDebit(_ context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(accountID, asset)
	w, ok := s.wallets[key]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	if w.Balance.Sub(amount).LessThan(w.Available) {
		return Wallet{}, ErrInsufficientFunds
	}

	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = time.Now().UTC()
	s.wallets[key] = w
	return w, nil
}

func (s *inMemoryStore) Swap(_ context.Context, debit, credit Leg) (SwapResult, error) {
	if debit.Amount.Sign() <= 0 || credit.Amount.Sign() <= 0 {
		return SwapResult{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	debitKey := Key(debit.AccountID, debit.Asset)
	creditKey := Key(credit.AccountID, credit.Asset)

	// Both legs on one wallet collapse to a net movement; two copies of the
	// same entry would let the credit write clobber the debit.
	if debitKey == creditKey {
		w, ok := s.wallets[debitKey]
		if !ok {
			return SwapResult{}, ErrNotFound
		}
		if w.Available.LessThan(debit.Amount) {
			return SwapResult{}, ErrInsufficientFunds
		}
		net := credit.Amount.Sub(debit.Amount)
		w.Balance = w.Balance.Add(net)
		w.Available = w.Available.Add(net)
		w.UpdatedAt = time.Now().UTC()
		s.wallets[debitKey] = w
		return SwapResult{Debited: w, Credited: w}, nil
	}

	from, ok := s.wallets[debitKey]
	if !ok {
		return SwapResult{}, ErrNotFound
	}
	to, ok := s.wallets[creditKey]
	if !ok {
		return SwapResult{}, ErrNotFound
	}

	if from.Available.LessThan(debit.Amount) {
		return SwapResult{}, ErrInsufficientFunds
	}

	now := time.Now().UTC()
	from.Balance = from.Balance.Sub(debit.Amount)
	from.Available = from.Available.Sub(debit.Amount)
	from.UpdatedAt = now
	to.Balance = to.Balance.Add(credit.Amount)
	to.Available = to.Available.Add(credit.Amount)
	to.UpdatedAt = now

	s.wallets[debitKey] = from
	s.wallets[creditKey] = to
	return SwapResult{Debited: from, Credited: to}, nil
}
