package kyc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists KYC submissions. Approve transitions a pending
// submission atomically and reports whether this call performed it.
type Repository interface {
	Create(ctx context.Context, sub Submission) error
	FindByAccount(ctx context.Context, accountID string) (Submission, error)
	Approve(ctx context.Context, id string, at time.Time) (bool, error)
}

// PostgresRepository stores submissions in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed KYC repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, sub Submission) error {
	subID, err := uuid.Parse(sub.ID)
	if err != nil {
		return err
	}
	accID, err := uuid.Parse(sub.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO kyc_submissions
        (id, account_id, document_type, document_number, full_name, date_of_birth, address, status, submitted_at, approve_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		subID, accID, sub.DocumentType, sub.DocumentNumber, sub.FullName, sub.DateOfBirth,
		sub.Address, sub.Status, sub.SubmittedAt.UTC(), sub.ApproveAt.UTC())
	return err
}

func (r *PostgresRepository) FindByAccount(ctx context.Context, accountID string) (Submission, error) {
	accID, err := uuid.Parse(accountID)
	if err != nil {
		return Submission{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, account_id, document_type, document_number, full_name, date_of_birth, address,
        status, submitted_at, approve_at, COALESCE(decided_at, 'epoch')
        FROM kyc_submissions WHERE account_id = $1 ORDER BY submitted_at DESC LIMIT 1`, accID)
	return scanSubmission(row)
}

func (r *PostgresRepository) Approve(ctx context.Context, id string, at time.Time) (bool, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE kyc_submissions SET status = $2, decided_at = $3 WHERE id = $1 AND status = $4`,
		subID, StatusApproved, at.UTC(), StatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func scanSubmission(row pgx.Row) (Submission, error) {
	var (
		sub   Submission
		id    uuid.UUID
		accID uuid.UUID
	)
	if err := row.Scan(&id, &accID, &sub.DocumentType, &sub.DocumentNumber, &sub.FullName, &sub.DateOfBirth,
		&sub.Address, &sub.Status, &sub.SubmittedAt, &sub.ApproveAt, &sub.DecidedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	sub.ID = id.String()
	sub.AccountID = accID.String()
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	sub.ApproveAt = sub.ApproveAt.UTC()
	sub.DecidedAt = sub.DecidedAt.UTC()
	return sub, nil
}
