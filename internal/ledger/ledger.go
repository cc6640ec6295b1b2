package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound occurs when no wallet exists for the requested account and
	// asset. Wallets are provisioned at account creation, so hitting this after
	// registration signals an invariant violation upstream.
	ErrNotFound = errors.New("wallet not found")

	// ErrInvalidAmount indicates a non-positive amount was supplied.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when the wallet's available or total balance
	// cannot cover the requested movement.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// SupportedAssets is the set of custodial assets provisioned for every account.
var SupportedAssets = []string{"BTC", "ETH", "USDT"}

// Wallet is a per-(account, asset) custodial position. Balance is the total
// holding including reserved funds; Available is the spendable portion.
// 0 <= Available <= Balance holds after every operation.
type Wallet struct {
	AccountID string
	Asset     string
	Balance   decimal.Decimal
	Available decimal.Decimal
	UpdatedAt time.Time
}

// Leg names one side of a two-wallet movement.
type Leg struct {
	AccountID string
	Asset     string
	Amount    decimal.Decimal
}

// SwapResult reports both wallets after an atomic swap.
type SwapResult struct {
	Debited  Wallet
	Credited Wallet
}

// Store is the single owner of wallet rows. Every operation is atomic with
// respect to concurrent callers on the same wallet key; Swap spans two keys and
// either applies both legs or neither.
type Store interface {
	// EnsureWallets provisions zeroed wallets for every supported asset.
	// Existing wallets are left untouched.
	EnsureWallets(ctx context.Context, accountID string) error

	Get(ctx context.Context, accountID, asset string) (Wallet, error)

	// Credit increments both balance and available.
	Credit(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error)

	// Reserve places a hold: checks available >= amount and decrements
	// available in one atomic step, leaving balance unchanged.
	Reserve(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error)

	// Release undoes a prior Reserve by incrementing available.
	Release(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error)

	// SettleDebit finalizes a reserved debit by decrementing balance. The
	// amount must be covered by an outstanding reservation: the operation
	// fails unless balance - amount >= available.
	SettleDebit(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error)

	// Swap atomically debits balance and available on the debit leg and
	// credits both on the credit leg. A partial swap must never be observable.
	Swap(ctx context.Context, debit, credit Leg) (SwapResult, error)
}

// Key returns the canonical wallet key used for lock ordering.
func Key(accountID, asset string) string {
	return accountID + "/" + asset
}
