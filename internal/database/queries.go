package database

import (
	"encoding/json"
	"fmt"
	"time"

	"mets-backend/internal/models"
)

// OrderColumns is the select list matching OrderRow.Scan.
const OrderColumns = `id, order_no, order_date::text, customer_info, technical_info, cells, status, progress, priority, created_at, updated_at`

// OrderRow is one row of the orders table. The JSONB columns stay raw until
// ToOrder decodes them. The json tags match the column names so the same
// type decodes PostgREST responses.
type OrderRow struct {
	ID            string          `json:"id"`
	OrderNo       string          `json:"order_no"`
	OrderDate     string          `json:"order_date"`
	CustomerInfo  json.RawMessage `json:"customer_info"`
	TechnicalInfo json.RawMessage `json:"technical_info,omitempty"`
	Cells         json.RawMessage `json:"cells"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	Priority      string          `json:"priority"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// RowScanner is implemented by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Scan reads a row selected with OrderColumns.
func (r *OrderRow) Scan(s RowScanner) error {
	var customer, technical, cells []byte
	if err := s.Scan(
		&r.ID, &r.OrderNo, &r.OrderDate, &customer, &technical, &cells,
		&r.Status, &r.Progress, &r.Priority, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return err
	}
	r.CustomerInfo = json.RawMessage(customer)
	r.TechnicalInfo = nil
	if len(technical) > 0 {
		r.TechnicalInfo = json.RawMessage(technical)
	}
	r.Cells = json.RawMessage(cells)
	return nil
}

func (r OrderRow) ToOrder() (models.Order, error) {
	o := models.Order{
		ID:        r.ID,
		OrderNo:   r.OrderNo,
		OrderDate: r.OrderDate,
		Status:    models.OrderStatus(r.Status),
		Progress:  r.Progress,
		Priority:  models.Priority(r.Priority),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.CustomerInfo) > 0 {
		if err := json.Unmarshal(r.CustomerInfo, &o.CustomerInfo); err != nil {
			return models.Order{}, fmt.Errorf("failed to decode customer info of order %s: %w", r.ID, err)
		}
	}
	if len(r.TechnicalInfo) > 0 && string(r.TechnicalInfo) != "null" {
		var ti models.TechnicalInfo
		if err := json.Unmarshal(r.TechnicalInfo, &ti); err != nil {
			return models.Order{}, fmt.Errorf("failed to decode technical info of order %s: %w", r.ID, err)
		}
		o.TechnicalInfo = &ti
	}
	if len(r.Cells) > 0 {
		if err := json.Unmarshal(r.Cells, &o.Cells); err != nil {
			return models.Order{}, fmt.Errorf("failed to decode cells of order %s: %w", r.ID, err)
		}
	}
	return o, nil
}

// NewOrderRow encodes an order for insertion.
func NewOrderRow(o models.Order) (OrderRow, error) {
	customer, err := json.Marshal(o.CustomerInfo)
	if err != nil {
		return OrderRow{}, fmt.Errorf("failed to encode customer info: %w", err)
	}
	cells := o.Cells
	if cells == nil {
		cells = []models.Cell{}
	}
	cellsJSON, err := json.Marshal(cells)
	if err != nil {
		return OrderRow{}, fmt.Errorf("failed to encode cells: %w", err)
	}

	row := OrderRow{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		OrderDate:    o.OrderDate,
		CustomerInfo: customer,
		Cells:        cellsJSON,
		Status:       string(o.Status),
		Progress:     o.Progress,
		Priority:     string(o.Priority),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.TechnicalInfo != nil {
		ti, err := json.Marshal(o.TechnicalInfo)
		if err != nil {
			return OrderRow{}, fmt.Errorf("failed to encode technical info: %w", err)
		}
		row.TechnicalInfo = ti
	}
	return row, nil
}

// RowsToOrders decodes rows, stopping at the first malformed one.
func RowsToOrders(rows []OrderRow) ([]models.Order, error) {
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.ToOrder()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
