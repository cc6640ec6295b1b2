package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
	"github.com/laxo-exchange/laxo/internal/notification"
	"github.com/laxo-exchange/laxo/internal/pricing"
)

// Oracle is the price dependency of the settlement engine. Satisfied by
// pricing.Oracle; tests substitute a fake.
type Oracle interface {
	Quote(ctx context.Context, asset string) pricing.Quote
}

// Service settles market orders instantly against the quoted reference price.
// Both legs of a trade move through a single atomic ledger swap.
type Service struct {
	wallets  ledger.Store
	oracle   Oracle
	orders   OrderRepository
	notifier notification.Notifier
}

// NewService builds the settlement engine. notifier is optional.
func NewService(wallets ledger.Store, oracle Oracle, orders OrderRepository, notifier notification.Notifier) *Service {
	return &Service{wallets: wallets, oracle: oracle, orders: orders, notifier: notifier}
}

// ExecuteInput captures a market order.
type ExecuteInput struct {
	AccountID string
	Side      string
	BaseAsset string
	Amount    decimal.Decimal
}

// Execute converts between the quote asset and the base asset at the current
// reference price. The price is read once and applied to both legs; there are
// no partial fills. The order record is written only after the swap committed.
func (s *Service) Execute(ctx context.Context, input ExecuteInput) (Order, error) {
	if input.Side != SideBuy && input.Side != SideSell {
		return Order{}, ErrInvalidSide
	}
	if !markets[input.BaseAsset] {
		return Order{}, ErrUnsupportedMarket
	}
	if input.Amount.Sign() <= 0 {
		return Order{}, ledger.ErrInvalidAmount
	}

	quote := s.oracle.Quote(ctx, input.BaseAsset)
	if quote.Price.Sign() <= 0 {
		return Order{}, ErrMarketUnavailable
	}

	quoteValue := input.Amount.Mul(quote.Price)

	var debit, credit ledger.Leg
	if input.Side == SideBuy {
		debit = ledger.Leg{AccountID: input.AccountID, Asset: QuoteAsset, Amount: quoteValue}
		credit = ledger.Leg{AccountID: input.AccountID, Asset: input.BaseAsset, Amount: input.Amount}
	} else {
		debit = ledger.Leg{AccountID: input.AccountID, Asset: input.BaseAsset, Amount: input.Amount}
		credit = ledger.Leg{AccountID: input.AccountID, Asset: QuoteAsset, Amount: quoteValue}
	}

	if _, err := s.wallets.Swap(ctx, debit, credit); err != nil {
		return Order{}, err
	}

	order := Order{
		ID:         uuid.NewString(),
		AccountID:  input.AccountID,
		Side:       input.Side,
		BaseAsset:  input.BaseAsset,
		QuoteAsset: QuoteAsset,
		Amount:     input.Amount,
		Price:      quote.Price,
		QuoteValue: quoteValue,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// The swap is committed; the audit record is what failed.
		return Order{}, fmt.Errorf("record order after settlement: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTradeExecuted,
			Destination: input.AccountID,
			Body:        fmt.Sprintf("%s %s %s at %s", input.Side, input.Amount, input.BaseAsset, quote.Price),
		})
	}

	return order, nil
}

// ListByAccount returns the account's settled orders.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Order, error) {
	return s.orders.ListByAccount(ctx, accountID)
}
