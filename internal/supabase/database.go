package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"mets-backend/internal/database"
	"mets-backend/internal/models"
)

// ErrOrderNotFound is returned when no row matches an order id.
var ErrOrderNotFound = errors.New("order not found")

// DatabaseClient reads and writes orders directly in Postgres.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// Load implements orders.Source.
func (d *DatabaseClient) Load(ctx context.Context) ([]models.Order, error) {
	return d.ListOrders(ctx)
}

func (d *DatabaseClient) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+database.OrderColumns+`
		FROM orders
		ORDER BY order_date DESC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var list []database.OrderRow
	for rows.Next() {
		var row database.OrderRow
		if err := row.Scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return database.RowsToOrders(list)
}

func (d *DatabaseClient) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var row database.OrderRow
	err := row.Scan(d.db.QueryRowContext(ctx, `
		SELECT `+database.OrderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	o, err := row.ToOrder()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder inserts o and returns it with the timestamps set by the
// database.
func (d *DatabaseClient) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	in, err := database.NewOrderRow(o)
	if err != nil {
		return nil, err
	}

	var row database.OrderRow
	err = row.Scan(d.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, order_no, order_date, customer_info, technical_info, cells, status, progress, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+database.OrderColumns,
		in.ID, in.OrderNo, in.OrderDate, []byte(in.CustomerInfo), nullableJSON(in.TechnicalInfo),
		[]byte(in.Cells), in.Status, in.Progress, in.Priority,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created, err := row.ToOrder()
	if err != nil {
		return nil, err
	}
	// The read-only risk level is derived, not stored.
	created.RiskLevel = o.RiskLevel
	return &created, nil
}

func (d *DatabaseClient) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, progress int) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, progress = $2
		WHERE id = $3
	`, string(status), progress, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return expectOneRow(res)
}

func (d *DatabaseClient) DeleteOrder(ctx context.Context, orderID string) error {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return expectOneRow(res)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
