package apiclient

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"mets-backend/internal/models"
	"mets-backend/internal/orders"
)

var ErrMockOrderNotFound = errors.New("mock order not found")

// mockStore is the in-memory order list served in mock mode.
type mockStore struct {
	mu     sync.Mutex
	orders []models.Order
	now    func() time.Time
}

func newMockStore() *mockStore {
	return &mockStore{orders: orders.DemoOrders(), now: time.Now}
}

func (m *mockStore) list() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, len(m.orders))
	for i, o := range m.orders {
		out[i] = o.Clone()
	}
	return out
}

func (m *mockStore) get(id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			c := o.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMockOrderNotFound, id)
}

func (m *mockStore) create(o models.Order) *models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	o = o.Clone()
	if o.ID == "" {
		o.ID = fmt.Sprintf("ord-%d", now.UnixMilli())
	}
	o.Status = models.StatusPlanned
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	m.orders = append(m.orders, o)
	c := o.Clone()
	return &c
}

func (m *mockStore) update(id string, o models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			o = o.Clone()
			o.ID = id
			o.CreatedAt = m.orders[i].CreatedAt
			o.UpdatedAt = m.now()
			m.orders[i] = o
			c := o.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMockOrderNotFound, id)
}

func (m *mockStore) delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMockOrderNotFound, id)
}
