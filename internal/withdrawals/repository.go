package withdrawals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists withdrawal records. Decide claims the terminal status
// atomically so two racing decisions cannot both mutate the wallet; Reopen is
// the compensating rollback when the wallet mutation after a claim fails.
type Repository interface {
	Create(ctx context.Context, wd Withdrawal) error
	Get(ctx context.Context, id string) (Withdrawal, error)
	Decide(ctx context.Context, id, status string, at time.Time) (Withdrawal, error)
	Reopen(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]Withdrawal, error)
}

// PostgresRepository stores withdrawals in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed withdrawal repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, wd Withdrawal) error {
	wdID, err := uuid.Parse(wd.ID)
	if err != nil {
		return err
	}
	accID, err := uuid.Parse(wd.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO withdrawals (id, account_id, asset, amount, destination, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		wdID, accID, wd.Asset, wd.Amount, wd.Destination, wd.Status, wd.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Withdrawal, error) {
	wdID, err := uuid.Parse(id)
	if err != nil {
		return Withdrawal{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, account_id, asset, amount, destination, status, created_at, COALESCE(decided_at, 'epoch')
        FROM withdrawals WHERE id = $1`, wdID)
	return scanWithdrawal(row)
}

func (r *PostgresRepository) Decide(ctx context.Context, id, status string, at time.Time) (Withdrawal, error) {
	wdID, err := uuid.Parse(id)
	if err != nil {
		return Withdrawal{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE withdrawals SET status = $2, decided_at = $3
        WHERE id = $1 AND status = $4
        RETURNING id, account_id, asset, amount, destination, status, created_at, decided_at`,
		wdID, status, at.UTC(), StatusCreated)
	wd, err := scanWithdrawal(row)
	if err == nil {
		return wd, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Withdrawal{}, err
	}
	// No row claimed: either the withdrawal is unknown or already terminal.
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return Withdrawal{}, getErr
	}
	return Withdrawal{}, ErrAlreadyDecided
}

func (r *PostgresRepository) Reopen(ctx context.Context, id string) error {
	wdID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE withdrawals SET status = $2, decided_at = NULL WHERE id = $1`, wdID, StatusCreated)
	return err
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Withdrawal, error) {
	accID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, asset, amount, destination, status, created_at, COALESCE(decided_at, 'epoch')
        FROM withdrawals WHERE account_id = $1 ORDER BY created_at DESC`, accID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Withdrawal
	for rows.Next() {
		wd, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return out, rows.Err()
}

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var (
		wd    Withdrawal
		id    uuid.UUID
		accID uuid.UUID
	)
	if err := row.Scan(&id, &accID, &wd.Asset, &wd.Amount, &wd.Destination, &wd.Status, &wd.CreatedAt, &wd.DecidedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Withdrawal{}, ErrNotFound
		}
		return Withdrawal{}, err
	}
	wd.ID = id.String()
	wd.AccountID = accID.String()
	wd.CreatedAt = wd.CreatedAt.UTC()
	wd.DecidedAt = wd.DecidedAt.UTC()
	return wd, nil
}
