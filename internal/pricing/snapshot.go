package pricing

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable record of one successful price refresh.
type Snapshot struct {
	ID        string
	Prices    map[string]decimal.Decimal
	FetchedAt time.Time
}

// SnapshotStore persists price snapshots for audit.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
}

// PostgresSnapshotStore stores snapshots as JSON rows.
type PostgresSnapshotStore struct {
	db *pgxpool.Pool
}

// NewPostgresSnapshotStore builds a Postgres-backed snapshot store.
func NewPostgresSnapshotStore(db *pgxpool.Pool) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

func (s *PostgresSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap.Prices)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO price_snapshots (id, prices, fetched_at) VALUES ($1, $2, $3)`,
		uuid.New(), payload, snap.FetchedAt.UTC())
	return err
}

type memorySnapshotStore struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

// NewMemorySnapshotStore builds an in-memory snapshot store for tests and dev.
func NewMemorySnapshotStore() SnapshotStore {
	return &memorySnapshotStore{}
}

func (s *memorySnapshotStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.ID = uuid.NewString()
	s.snapshots = append(s.snapshots, snap)
	return nil
}
