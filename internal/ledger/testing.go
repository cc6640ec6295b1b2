package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seed is a test helper that sets both balance and available for a wallet when
// using the in-memory store.
func Seed(s Store, accountID, asset string, amount decimal.Decimal) {
	SeedBalances(s, accountID, asset, amount, amount)
}

// SeedBalances sets balance and available independently, for fixtures with an
// outstanding reservation.
func SeedBalances(s Store, accountID, asset string, balance, available decimal.Decimal) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.wallets[Key(accountID, asset)] = Wallet{
			AccountID: accountID,
			Asset:     asset,
			Balance:   balance,
			Available: available,
			UpdatedAt: time.Now().UTC(),
		}
	}
}
