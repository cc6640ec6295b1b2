package trading

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOrderNotFound occurs when no order exists for the identifier.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists settled orders.
type OrderRepository interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id string) (Order, error)
	ListByAccount(ctx context.Context, accountID string) ([]Order, error)
}

// PostgresOrderRepository stores orders in PostgreSQL.
type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

// NewPostgresOrderRepository builds a Postgres-backed order repository.
func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order Order) error {
	orderID, err := uuid.Parse(order.ID)
	if err != nil {
		return err
	}
	accID, err := uuid.Parse(order.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO orders (id, account_id, side, base_asset, quote_asset, amount, price, quote_value, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		orderID, accID, order.Side, order.BaseAsset, order.QuoteAsset, order.Amount, order.Price, order.QuoteValue, order.CreatedAt.UTC())
	return err
}

func (r *PostgresOrderRepository) Get(ctx context.Context, id string) (Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return Order{}, ErrOrderNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, account_id, side, base_asset, quote_asset, amount, price, quote_value, created_at
        FROM orders WHERE id = $1`, orderID)
	return scanOrder(row)
}

func (r *PostgresOrderRepository) ListByAccount(ctx context.Context, accountID string) ([]Order, error) {
	accID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, side, base_asset, quote_asset, amount, price, quote_value, created_at
        FROM orders WHERE account_id = $1 ORDER BY created_at DESC`, accID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		order Order
		id    uuid.UUID
		accID uuid.UUID
	)
	if err := row.Scan(&id, &accID, &order.Side, &order.BaseAsset, &order.QuoteAsset,
		&order.Amount, &order.Price, &order.QuoteValue, &order.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	order.ID = id.String()
	order.AccountID = accID.String()
	order.CreatedAt = order.CreatedAt.UTC()
	return order, nil
}

type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]Order
}

// NewMemoryOrderRepository constructs an in-memory order repository for tests.
func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{orders: make(map[string]Order)}
}

func (r *memoryOrderRepository) Create(_ context.Context, order Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return errors.New("order exists")
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrderRepository) Get(_ context.Context, id string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (r *memoryOrderRepository) ListByAccount(_ context.Context, accountID string) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, order := range r.orders {
		if order.AccountID == accountID {
			out = append(out, order)
		}
	}
	return out, nil
}
