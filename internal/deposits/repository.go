package deposits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound occurs when no deposit exists for the identifier.
var ErrNotFound = errors.New("deposit not found")

// Repository persists deposit records. Decide transitions a deposit out of
// StatusCreated atomically and reports whether this call performed the
// transition, which is what makes approval idempotent.
type Repository interface {
	Create(ctx context.Context, dep Deposit) error
	Get(ctx context.Context, id string) (Deposit, error)
	Decide(ctx context.Context, id, status string, at time.Time) (bool, error)
	ListByAccount(ctx context.Context, accountID string) ([]Deposit, error)
}

// PostgresRepository stores deposits in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed deposit repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, dep Deposit) error {
	depID, err := uuid.Parse(dep.ID)
	if err != nil {
		return err
	}
	accID, err := uuid.Parse(dep.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO deposits (id, account_id, asset, amount, destination, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		depID, accID, dep.Asset, dep.Amount, dep.Destination, dep.Status, dep.CreatedAt.UTC())
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Deposit, error) {
	depID, err := uuid.Parse(id)
	if err != nil {
		return Deposit{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, account_id, asset, amount, destination, status, created_at, COALESCE(decided_at, 'epoch')
        FROM deposits WHERE id = $1`, depID)
	return scanDeposit(row)
}

// Decide flips status in a single guarded UPDATE; zero rows affected with an
// existing record means the deposit was already decided.
func (r *PostgresRepository) Decide(ctx context.Context, id, status string, at time.Time) (bool, error) {
	depID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE deposits SET status = $2, decided_at = $3 WHERE id = $1 AND status = $4`,
		depID, status, at.UTC(), StatusCreated)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Deposit, error) {
	accID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, asset, amount, destination, status, created_at, COALESCE(decided_at, 'epoch')
        FROM deposits WHERE account_id = $1 ORDER BY created_at DESC`, accID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Deposit
	for rows.Next() {
		dep, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func scanDeposit(row pgx.Row) (Deposit, error) {
	var (
		dep   Deposit
		id    uuid.UUID
		accID uuid.UUID
	)
	if err := row.Scan(&id, &accID, &dep.Asset, &dep.Amount, &dep.Destination, &dep.Status, &dep.CreatedAt, &dep.DecidedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deposit{}, ErrNotFound
		}
		return Deposit{}, err
	}
	dep.ID = id.String()
	dep.AccountID = accID.String()
	dep.CreatedAt = dep.CreatedAt.UTC()
	dep.DecidedAt = dep.DecidedAt.UTC()
	return dep, nil
}
