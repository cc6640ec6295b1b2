package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists wallet rows in PostgreSQL. Balance checks are
// expressed as conditional updates so the check and the mutation are a single
// atomic statement; the row is never read, judged, and written in separate
// round trips.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed wallet store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureWallets(ctx context.Context, accountID string) error {
	accUUID, err := uuid.Parse(accountID)
	if err != nil {
		return err
	}
	for _, asset := range SupportedAssets {
		_, err := s.db.Exec(ctx, `INSERT INTO wallets (account_id, asset, balance, available, updated_at)
            VALUES ($1, $2, 0, 0, $3)
            ON CONFLICT (account_id, asset) DO NOTHING`, accUUID, asset, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("ensure wallet %s/%s: %w", accountID, asset, err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, accountID, asset string) (Wallet, error) {
	accUUID, err := uuid.Parse(accountID)
	if err != nil {
		return Wallet{}, err
	}
	row := s.db.QueryRow(ctx, `SELECT balance, available, updated_at
        FROM wallets WHERE account_id = $1 AND asset = $2`, accUUID, asset)
	w := Wallet{AccountID: accountID, Asset: asset}
	if err := row.Scan(&w.Balance, &w.Available, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}

func (s *PostgresStore) Credit(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}
	return s.conditionalUpdate(ctx, accountID, asset, amount,
		`UPDATE wallets SET balance = balance + $3, available = available + $3, updated_at = $4
         WHERE account_id = $1 AND asset = $2
         RETURNING balance, available, updated_at`)
}

func (s *PostgresStore) Reserve(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}
	return s.conditionalUpdate(ctx, accountID, asset, amount,
		`UPDATE wallets SET available = available - $3, updated_at = $4
         WHERE account_id = $1 AND asset = $2 AND available >= $3
         RETURNING balance, available, updated_at`)
}

func (s *PostgresStore) Release(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}
	return s.conditionalUpdate(ctx, accountID, asset, amount,
		`UPDATE wallets SET available = available + $3, updated_at = $4
         WHERE account_id = $1 AND asset = $2
         RETURNING balance, available, updated_at`)
}

func (s *PostgresStore) SettleDebit(ctx context.Context, accountID, asset string, amount decimal.Decimal) (Wallet, error) {
	if amount.Sign() <= 0 {
		return Wallet{}, ErrInvalidAmount
	}
	return s.conditionalUpdate(ctx, accountID, asset, amount,
		`UPDATE wallets SET balance = balance - $3, updated_at = $4
         WHERE account_id = $1 AND asset = $2 AND balance - $3 >= available
         RETURNING balance, available, updated_at`)
}

// conditionalUpdate runs one of the guarded UPDATE statements. A statement that
// matches no row either hit a missing wallet or a failed balance guard; the
// follow-up existence check distinguishes the two.
func (s *PostgresStore) conditionalUpdate(ctx context.Context, accountID, asset string, amount decimal.Decimal, query string) (Wallet, error) {
	accUUID, err := uuid.Parse(accountID)
	if err != nil {
		return Wallet{}, err
	}

	w := Wallet{AccountID: accountID, Asset: asset}
	err = s.db.QueryRow(ctx, query, accUUID, asset, amount, time.Now().UTC()).
		Scan(&w.Balance, &w.Available, &w.UpdatedAt)
	if err == nil {
		w.UpdatedAt = w.UpdatedAt.UTC()
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, err
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE account_id = $1 AND asset = $2)`,
		accUUID, asset).Scan(&exists); err != nil {
		return Wallet{}, err
	}
	if !exists {
		return Wallet{}, ErrNotFound
	}
	return Wallet{}, ErrInsufficientFunds
}

func (s *PostgresStore) Swap(ctx context.Context, debit, credit Leg) (SwapResult, error) {
	if debit.Amount.Sign() <= 0 || credit.Amount.Sign() <= 0 {
		return SwapResult{}, ErrInvalidAmount
	}

	debitUUID, err := uuid.Parse(debit.AccountID)
	if err != nil {
		return SwapResult{}, err
	}
	creditUUID, err := uuid.Parse(credit.AccountID)
	if err != nil {
		return SwapResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SwapResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock both rows in canonical key order so two concurrent swaps touching
	// overlapping wallets cannot deadlock.
	type rowLock struct {
		acc   uuid.UUID
		asset string
	}
	first, second := rowLock{debitUUID, debit.Asset}, rowLock{creditUUID, credit.Asset}
	if Key(credit.AccountID, credit.Asset) < Key(debit.AccountID, debit.Asset) {
		first, second = second, first
	}
	for _, l := range []rowLock{first, second} {
		var one int
		if err := tx.QueryRow(ctx, `SELECT 1 FROM wallets WHERE account_id = $1 AND asset = $2 FOR UPDATE`,
			l.acc, l.asset).Scan(&one); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return SwapResult{}, ErrNotFound
			}
			return SwapResult{}, err
		}
	}

	now := time.Now().UTC()
	debited := Wallet{AccountID: debit.AccountID, Asset: debit.Asset}
	err = tx.QueryRow(ctx, `UPDATE wallets SET balance = balance - $3, available = available - $3, updated_at = $4
        WHERE account_id = $1 AND asset = $2 AND available >= $3
        RETURNING balance, available, updated_at`,
		debitUUID, debit.Asset, debit.Amount, now).
		Scan(&debited.Balance, &debited.Available, &debited.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwapResult{}, ErrInsufficientFunds
		}
		return SwapResult{}, err
	}

	credited := Wallet{AccountID: credit.AccountID, Asset: credit.Asset}
	err = tx.QueryRow(ctx, `UPDATE wallets SET balance = balance + $3, available = available + $3, updated_at = $4
        WHERE account_id = $1 AND asset = $2
        RETURNING balance, available, updated_at`,
		creditUUID, credit.Asset, credit.Amount, now).
		Scan(&credited.Balance, &credited.Available, &credited.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwapResult{}, ErrNotFound
		}
		return SwapResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return SwapResult{}, err
	}

	debited.UpdatedAt = debited.UpdatedAt.UTC()
	credited.UpdatedAt = credited.UpdatedAt.UTC()
	return SwapResult{Debited: debited, Credited: credited}, nil
}
