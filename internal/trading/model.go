package trading

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// SideBuy converts quote asset into base asset.
	SideBuy = "buy"
	// SideSell converts base asset into quote asset.
	SideSell = "sell"

	// QuoteAsset is the single asset all markets are priced and settled in.
	QuoteAsset = "USDT"
)

var (
	// ErrUnsupportedMarket occurs when the base asset has no market.
	ErrUnsupportedMarket = errors.New("unsupported market")

	// ErrMarketUnavailable occurs when no valid price is known. A zero quote
	// must never settle a trade.
	ErrMarketUnavailable = errors.New("market unavailable")

	// ErrInvalidSide occurs when the order side is neither buy nor sell.
	ErrInvalidSide = errors.New("side must be buy or sell")
)

// markets is the set of tradeable base assets.
var markets = map[string]bool{
	"BTC": true,
	"ETH": true,
}

// Order is the immutable record of a settled trade. It is written only after
// the wallet swap committed and is never mutated afterwards.
type Order struct {
	ID         string
	AccountID  string
	Side       string
	BaseAsset  string
	QuoteAsset string
	Amount     decimal.Decimal
	Price      decimal.Decimal
	QuoteValue decimal.Decimal
	CreatedAt  time.Time
}
