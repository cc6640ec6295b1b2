package deposits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
	"github.com/laxo-exchange/laxo/internal/notification"
)

// AccountStatusUpdater promotes an account once it holds funds.
type AccountStatusUpdater interface {
	MarkFunded(ctx context.Context, accountID string) error
}

// Service coordinates the deposit state machine against the wallet store.
type Service struct {
	repo      Repository
	wallets   ledger.Store
	confirmer Confirmer
	accounts  AccountStatusUpdater
	notifier  notification.Notifier
}

// NewService builds a deposit service. confirmer defaults to the instant stub;
// accounts and notifier are optional.
func NewService(repo Repository, wallets ledger.Store, confirmer Confirmer, accounts AccountStatusUpdater, notifier notification.Notifier) *Service {
	if confirmer == nil {
		confirmer = InstantConfirmer{}
	}
	return &Service{repo: repo, wallets: wallets, confirmer: confirmer, accounts: accounts, notifier: notifier}
}

// CreateInput captures the data required to open a deposit.
type CreateInput struct {
	AccountID   string
	Asset       string
	Amount      decimal.Decimal
	Destination string
}

// Create records the deposit, awaits the confirmation hook, and approves or
// rejects accordingly.
func (s *Service) Create(ctx context.Context, input CreateInput) (Deposit, error) {
	if input.Amount.Sign() <= 0 {
		return Deposit{}, ledger.ErrInvalidAmount
	}
	if !isSupportedAsset(input.Asset) {
		return Deposit{}, fmt.Errorf("unsupported asset %q", input.Asset)
	}

	dep := Deposit{
		ID:          uuid.NewString(),
		AccountID:   input.AccountID,
		Asset:       input.Asset,
		Amount:      input.Amount,
		Destination: input.Destination,
		Status:      StatusCreated,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, dep); err != nil {
		return Deposit{}, err
	}

	confirmation, err := s.confirmer.Confirm(ctx, dep)
	if err != nil {
		return dep, fmt.Errorf("confirm deposit: %w", err)
	}
	if !confirmation.Confirmed {
		if _, err := s.repo.Decide(ctx, dep.ID, StatusRejected, time.Now().UTC()); err != nil {
			return dep, err
		}
		dep.Status = StatusRejected
		return dep, nil
	}

	return s.Approve(ctx, dep.ID)
}

// Approve transitions the deposit to approved and credits the wallet exactly
// once. Approving an already-approved deposit is a no-op, so retries cannot
// double-credit.
func (s *Service) Approve(ctx context.Context, id string) (Deposit, error) {
	dep, err := s.repo.Get(ctx, id)
	if err != nil {
		return Deposit{}, err
	}

	transitioned, err := s.repo.Decide(ctx, id, StatusApproved, time.Now().UTC())
	if err != nil {
		return Deposit{}, err
	}
	if !transitioned {
		// Already decided; the credit happened (or the deposit was rejected).
		return s.repo.Get(ctx, id)
	}

	if _, err := s.wallets.Credit(ctx, dep.AccountID, dep.Asset, dep.Amount); err != nil {
		return Deposit{}, err
	}

	if s.accounts != nil {
		if err := s.accounts.MarkFunded(ctx, dep.AccountID); err != nil {
			return Deposit{}, err
		}
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindDepositApproved,
			Destination: dep.AccountID,
			Body:        fmt.Sprintf("Deposit of %s %s credited", dep.Amount, dep.Asset),
		})
	}

	return s.repo.Get(ctx, id)
}

// Get fetches a deposit record.
func (s *Service) Get(ctx context.Context, id string) (Deposit, error) {
	return s.repo.Get(ctx, id)
}

// ListByAccount returns the account's deposits.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Deposit, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

func isSupportedAsset(asset string) bool {
	for _, a := range ledger.SupportedAssets {
		if a == asset {
			return true
		}
	}
	return false
}
