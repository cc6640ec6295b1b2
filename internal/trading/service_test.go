package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
	"github.com/laxo-exchange/laxo/internal/pricing"
)

type fakeOracle struct {
	prices map[string]decimal.Decimal
}

func (f *fakeOracle) Quote(_ context.Context, asset string) pricing.Quote {
	return pricing.Quote{Asset: asset, Price: f.prices[asset], AsOf: time.Now().UTC()}
}

func newTestService(prices map[string]decimal.Decimal) (*Service, ledger.Store, string) {
	wallets := ledger.NewInMemory()
	account := uuid.NewString()
	wallets.EnsureWallets(context.Background(), account)
	svc := NewService(wallets, &fakeOracle{prices: prices}, NewMemoryOrderRepository(), nil)
	return svc, wallets, account
}

func TestExecuteBuy(t *testing.T) {
	svc, wallets, account := newTestService(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50_000)})
	ctx := context.Background()
	ledger.Seed(wallets, account, "USDT", decimal.NewFromInt(100_000))

	order, err := svc.Execute(ctx, ExecuteInput{AccountID: account, Side: SideBuy, BaseAsset: "BTC", Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("execute buy: %v", err)
	}
	if !order.Price.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("expected execution price 50000, got %s", order.Price)
	}
	if !order.QuoteValue.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("expected quote value 50000, got %s", order.QuoteValue)
	}

	usdt, _ := wallets.Get(ctx, account, "USDT")
	btc, _ := wallets.Get(ctx, account, "BTC")
	if !usdt.Balance.Equal(decimal.NewFromInt(50_000)) || !usdt.Available.Equal(decimal.NewFromInt(50_000)) {
		t.Fatalf("expected USDT 50000/50000, got %s/%s", usdt.Balance, usdt.Available)
	}
	if !btc.Balance.Equal(decimal.NewFromInt(1)) || !btc.Available.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected BTC 1/1, got %s/%s", btc.Balance, btc.Available)
	}
}

func TestExecuteSell(t *testing.T) {
	svc, wallets, account := newTestService(map[string]decimal.Decimal{"ETH": decimal.NewFromInt(3_000)})
	ctx := context.Background()
	ledger.Seed(wallets, account, "ETH", decimal.NewFromInt(5))

	order, err := svc.Execute(ctx, ExecuteInput{AccountID: account, Side: SideSell, BaseAsset: "ETH", Amount: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("execute sell: %v", err)
	}
	if !order.QuoteValue.Equal(decimal.NewFromInt(6_000)) {
		t.Fatalf("expected proceeds 6000, got %s", order.QuoteValue)
	}

	eth, _ := wallets.Get(ctx, account, "ETH")
	usdt, _ := wallets.Get(ctx, account, "USDT")
	if !eth.Balance.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected ETH 3, got %s", eth.Balance)
	}
	if !usdt.Balance.Equal(decimal.NewFromInt(6_000)) {
		t.Fatalf("expected USDT 6000, got %s", usdt.Balance)
	}
}

func TestExecuteRejectsZeroPrice(t *testing.T) {
	svc, wallets, account := newTestService(map[string]decimal.Decimal{})
	ledger.Seed(wallets, account, "USDT", decimal.NewFromInt(100_000))

	_, err := svc.Execute(context.Background(), ExecuteInput{AccountID: account, Side: SideBuy, BaseAsset: "BTC", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrMarketUnavailable) {
		t.Fatalf("expected market unavailable on zero quote, got %v", err)
	}

	usdt, _ := wallets.Get(context.Background(), account, "USDT")
	if !usdt.Balance.Equal(decimal.NewFromInt(100_000)) {
		t.Fatalf("failed trade must not move funds, got %s", usdt.Balance)
	}
}

func TestExecuteUnsupportedMarket(t *testing.T) {
	svc, _, account := newTestService(map[string]decimal.Decimal{"DOGE": decimal.NewFromInt(1)})

	_, err := svc.Execute(context.Background(), ExecuteInput{AccountID: account, Side: SideBuy, BaseAsset: "DOGE", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrUnsupportedMarket) {
		t.Fatalf("expected unsupported market, got %v", err)
	}
}

func TestExecuteInsufficientQuoteFunds(t *testing.T) {
	svc, wallets, account := newTestService(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50_000)})
	ledger.Seed(wallets, account, "USDT", decimal.NewFromInt(100))

	_, err := svc.Execute(context.Background(), ExecuteInput{AccountID: account, Side: SideBuy, BaseAsset: "BTC", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}

func TestExecuteRecordsOrderOnlyOnSuccess(t *testing.T) {
	svc, wallets, account := newTestService(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50_000)})
	ctx := context.Background()
	ledger.Seed(wallets, account, "USDT", decimal.NewFromInt(100))

	svc.Execute(ctx, ExecuteInput{AccountID: account, Side: SideBuy, BaseAsset: "BTC", Amount: decimal.NewFromInt(1)})

	orders, _ := svc.ListByAccount(ctx, account)
	if len(orders) != 0 {
		t.Fatalf("no order may exist for a swap that did not commit, got %d", len(orders))
	}
}

func TestExecuteInvalidSide(t *testing.T) {
	svc, _, account := newTestService(map[string]decimal.Decimal{"BTC": decimal.NewFromInt(50_000)})

	_, err := svc.Execute(context.Background(), ExecuteInput{AccountID: account, Side: "short", BaseAsset: "BTC", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected invalid side, got %v", err)
	}
}
