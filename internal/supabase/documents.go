package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"mets-backend/internal/database"
	"mets-backend/internal/models"
)

const ordersTable = "orders"

// DocumentSource reads orders through the Supabase REST API instead of a
// direct database connection.
type DocumentSource struct {
	client *Client
}

func NewDocumentSource(client *Client) *DocumentSource {
	return &DocumentSource{client: client}
}

// Load implements orders.Source.
func (s *DocumentSource) Load(ctx context.Context) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []database.OrderRow
	_, err := s.client.Supabase.From(ordersTable).
		Select("*", "exact", false).
		Order("order_date", &postgrest.OrderOpts{Ascending: false}).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order documents: %w", err)
	}

	return database.RowsToOrders(rows)
}

// CreateOrder inserts o as a document and returns the stored version.
func (s *DocumentSource) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row, err := database.NewOrderRow(o)
	if err != nil {
		return nil, err
	}
	doc := documentInsert{
		ID:            row.ID,
		OrderNo:       row.OrderNo,
		OrderDate:     row.OrderDate,
		CustomerInfo:  row.CustomerInfo,
		TechnicalInfo: row.TechnicalInfo,
		Cells:         row.Cells,
		Status:        row.Status,
		Progress:      row.Progress,
		Priority:      row.Priority,
	}

	var stored []database.OrderRow
	_, err = s.client.Supabase.From(ordersTable).
		Insert(doc, false, "", "representation", "").
		ExecuteToWithContext(ctx, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order document: %w", err)
	}
	if len(stored) == 0 {
		return &o, nil
	}

	created, err := stored[0].ToOrder()
	if err != nil {
		return nil, err
	}
	created.RiskLevel = o.RiskLevel
	return &created, nil
}

// GetOrder fetches one order document by id.
func (s *DocumentSource) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var rows []database.OrderRow
	_, err := s.client.Supabase.From(ordersTable).
		Select("*", "", false).
		Eq("id", orderID).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get order document: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrOrderNotFound
	}

	o, err := rows[0].ToOrder()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *DocumentSource) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, progress int) error {
	patch := map[string]any{"status": string(status), "progress": progress}

	var updated []database.OrderRow
	_, err := s.client.Supabase.From(ordersTable).
		Update(patch, "representation", "").
		Eq("id", orderID).
		ExecuteToWithContext(ctx, &updated)
	if err != nil {
		return fmt.Errorf("failed to update order document: %w", err)
	}
	if len(updated) == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *DocumentSource) DeleteOrder(ctx context.Context, orderID string) error {
	var deleted []database.OrderRow
	_, err := s.client.Supabase.From(ordersTable).
		Delete("representation", "").
		Eq("id", orderID).
		ExecuteToWithContext(ctx, &deleted)
	if err != nil {
		return fmt.Errorf("failed to delete order document: %w", err)
	}
	if len(deleted) == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// documentInsert leaves the timestamps to the database defaults.
type documentInsert struct {
	ID            string          `json:"id"`
	OrderNo       string          `json:"order_no"`
	OrderDate     string          `json:"order_date"`
	CustomerInfo  json.RawMessage `json:"customer_info"`
	TechnicalInfo json.RawMessage `json:"technical_info,omitempty"`
	Cells         json.RawMessage `json:"cells"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	Priority      string          `json:"priority"`
}
