package pricing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxAge is the cache freshness window for quotes.
const DefaultMaxAge = 20 * time.Second

// Quote is a point-in-time price for an asset in quote-asset units. A zero
// price means no valid quote is known; callers must treat it as "market
// unavailable", never as a tradeable price.
type Quote struct {
	Asset string
	Price decimal.Decimal
	AsOf  time.Time
}

// Oracle caches reference prices fetched from a Source. The cache starts
// empty, is populated on the first successful fetch and overwritten on each
// subsequent one. Refresh failures fall back to the last cached value, or to a
// zero default when nothing was ever fetched.
type Oracle struct {
	source    Source
	snapshots SnapshotStore
	logger    *slog.Logger
	maxAge    time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	fetchedAt time.Time
}

// NewOracle builds a price oracle. snapshots may be nil to disable durable
// snapshots; maxAge <= 0 selects DefaultMaxAge.
func NewOracle(source Source, snapshots SnapshotStore, logger *slog.Logger, maxAge time.Duration) *Oracle {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Oracle{
		source:    source,
		snapshots: snapshots,
		logger:    logger,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// Quote returns the freshest known price for the asset. It never fails: a
// refresh error is recovered locally by serving the stale cache or the zero
// default.
func (o *Oracle) Quote(ctx context.Context, asset string) Quote {
	o.mu.RLock()
	prices, fetchedAt := o.prices, o.fetchedAt
	o.mu.RUnlock()

	now := o.now()
	if prices != nil && now.Sub(fetchedAt) < o.maxAge {
		return Quote{Asset: asset, Price: prices[asset], AsOf: fetchedAt}
	}

	// The fetch happens outside any lock; it may block on external I/O. Two
	// racing refreshers may both fetch and the last writer wins, which is
	// harmless for a value at most one freshness window old.
	fresh, err := o.source.Fetch(ctx)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("price refresh failed, serving cached quote", "asset", asset, "error", err)
		}
		if prices != nil {
			return Quote{Asset: asset, Price: prices[asset], AsOf: fetchedAt}
		}
		return Quote{Asset: asset, Price: decimal.Zero, AsOf: now}
	}

	o.mu.Lock()
	o.prices = fresh
	o.fetchedAt = now
	o.mu.Unlock()

	o.persistSnapshot(ctx, fresh, now)

	return Quote{Asset: asset, Price: fresh[asset], AsOf: now}
}

// All returns every cached price, refreshing first if the cache is stale.
func (o *Oracle) All(ctx context.Context) (map[string]decimal.Decimal, time.Time) {
	// Refresh through the single-asset path; the asset argument only selects
	// the returned entry.
	q := o.Quote(ctx, "")

	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(o.prices))
	for asset, price := range o.prices {
		out[asset] = price
	}
	return out, q.AsOf
}

// persistSnapshot writes an immutable snapshot of a successful refresh.
// Snapshot storage is audit data only; a write failure is logged and never
// fails the quote.
func (o *Oracle) persistSnapshot(ctx context.Context, prices map[string]decimal.Decimal, at time.Time) {
	if o.snapshots == nil {
		return
	}
	if err := o.snapshots.Save(ctx, Snapshot{Prices: prices, FetchedAt: at}); err != nil && o.logger != nil {
		o.logger.Warn("price snapshot write failed", "error", err)
	}
}
