package withdrawals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laxo-exchange/laxo/internal/ledger"
	"github.com/laxo-exchange/laxo/internal/notification"
)

// Actor identifies the caller of an administrative operation.
type Actor struct {
	AccountID string
	Admin     bool
}

// Service runs the two-phase withdrawal flow: reserve on creation, settle or
// release on the administrative decision.
type Service struct {
	repo     Repository
	wallets  ledger.Store
	notifier notification.Notifier
}

// NewService builds a withdrawal service. notifier is optional.
func NewService(repo Repository, wallets ledger.Store, notifier notification.Notifier) *Service {
	return &Service{repo: repo, wallets: wallets, notifier: notifier}
}

// CreateInput captures the data required to request a withdrawal.
type CreateInput struct {
	AccountID   string
	Asset       string
	Amount      decimal.Decimal
	Destination string
}

// Create reserves the funds and records the withdrawal. The record is never
// created when the reservation fails; a failed insert releases the hold.
func (s *Service) Create(ctx context.Context, input CreateInput) (Withdrawal, error) {
	if input.Amount.Sign() <= 0 {
		return Withdrawal{}, ledger.ErrInvalidAmount
	}

	if _, err := s.wallets.Reserve(ctx, input.AccountID, input.Asset, input.Amount); err != nil {
		return Withdrawal{}, err
	}

	wd := Withdrawal{
		ID:          uuid.NewString(),
		AccountID:   input.AccountID,
		Asset:       input.Asset,
		Amount:      input.Amount,
		Destination: input.Destination,
		Status:      StatusCreated,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, wd); err != nil {
		if _, relErr := s.wallets.Release(ctx, input.AccountID, input.Asset, input.Amount); relErr != nil {
			return Withdrawal{}, fmt.Errorf("record withdrawal: %w (release failed: %v)", err, relErr)
		}
		return Withdrawal{}, err
	}

	return wd, nil
}

// Decide finalizes or releases the reservation. Only administrators may call
// it; each withdrawal is decidable exactly once.
func (s *Service) Decide(ctx context.Context, id string, approve bool, actor Actor) (Withdrawal, error) {
	if !actor.Admin {
		return Withdrawal{}, ErrForbidden
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}

	// Claim the terminal status first so a racing second decision gets
	// ErrAlreadyDecided instead of a second wallet mutation.
	wd, err := s.repo.Decide(ctx, id, status, time.Now().UTC())
	if err != nil {
		return Withdrawal{}, err
	}

	if approve {
		if _, err := s.wallets.SettleDebit(ctx, wd.AccountID, wd.Asset, wd.Amount); err != nil {
			// Undo the claim so the record matches the ledger.
			if reopenErr := s.repo.Reopen(ctx, id); reopenErr != nil {
				return Withdrawal{}, fmt.Errorf("settle withdrawal: %w (reopen failed: %v)", err, reopenErr)
			}
			return Withdrawal{}, err
		}
	} else {
		if _, err := s.wallets.Release(ctx, wd.AccountID, wd.Asset, wd.Amount); err != nil {
			if reopenErr := s.repo.Reopen(ctx, id); reopenErr != nil {
				return Withdrawal{}, fmt.Errorf("release withdrawal: %w (reopen failed: %v)", err, reopenErr)
			}
			return Withdrawal{}, err
		}
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWithdrawalDecided,
			Destination: wd.AccountID,
			Body:        fmt.Sprintf("Withdrawal of %s %s %s", wd.Amount, wd.Asset, status),
		})
	}

	return wd, nil
}

// Get fetches a withdrawal record.
func (s *Service) Get(ctx context.Context, id string) (Withdrawal, error) {
	return s.repo.Get(ctx, id)
}

// ListByAccount returns the account's withdrawals.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Withdrawal, error) {
	return s.repo.ListByAccount(ctx, accountID)
}
