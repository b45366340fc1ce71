package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"mets-backend/internal/export"
	"mets-backend/internal/models"
	"mets-backend/internal/notify"
	"mets-backend/internal/orders"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrStorageDisabled = errors.New("export storage is not configured")
	ErrExportNotFound  = errors.New("export not found")
)

// OrderWriter persists newly created orders.
type OrderWriter interface {
	CreateOrder(ctx context.Context, o models.Order) (*models.Order, error)
}

// OrderStore changes orders that already exist in the backing store.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, progress int) error
	DeleteOrder(ctx context.Context, orderID string) error
}

// CacheInvalidator drops a cached order list.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type OrderServiceConfig struct {
	Source   orders.Source
	Writer   OrderWriter
	Store    OrderStore
	Cache    CacheInvalidator
	Exports  export.Store
	Notifier notify.Notifier
	Scorer   orders.RiskScorer
	PageSize int
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// OrderService owns the shared order snapshot and one view session per
// user. Sessions start from the snapshot and are dropped on reload.
type OrderService struct {
	source   orders.Source
	writer   OrderWriter
	store    OrderStore
	cache    CacheInvalidator
	exports  export.Store
	notifier notify.Notifier
	scorer   orders.RiskScorer
	pageSize int
	logger   *zap.Logger
	now      func() time.Time

	snapshot *orders.Engine

	createMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]*orders.Engine
}

func NewOrderService(cfg OrderServiceConfig) *OrderService {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard{}
	}
	if cfg.Scorer == nil {
		cfg.Scorer = orders.DefaultScorer()
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = orders.DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &OrderService{
		source:   cfg.Source,
		writer:   cfg.Writer,
		store:    cfg.Store,
		cache:    cfg.Cache,
		exports:  cfg.Exports,
		notifier: cfg.Notifier,
		scorer:   cfg.Scorer,
		pageSize: cfg.PageSize,
		logger:   cfg.Logger,
		now:      cfg.Now,
		sessions: make(map[string]*orders.Engine),
	}
	s.snapshot = s.newEngine()
	return s
}

func (s *OrderService) newEngine() *orders.Engine {
	return orders.NewEngine(
		orders.WithScorer(s.scorer),
		orders.WithPageSize(s.pageSize),
		orders.WithNotifier(s.notifier),
		orders.WithLogger(s.logger),
	)
}

// Load fills the snapshot from the source. On failure the demo orders are
// installed and the error is returned.
func (s *OrderService) Load(ctx context.Context) error {
	err := s.snapshot.Load(ctx, s.source)
	s.resetSessions()
	return err
}

// Reload drops the cache, reloads the snapshot and resets every session.
func (s *OrderService) Reload(ctx context.Context) models.ReloadResponse {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate order cache", zap.Error(err))
		}
	}

	resp := models.ReloadResponse{}
	if err := s.Load(ctx); err != nil {
		resp.Fallback = true
		resp.Error = err.Error()
	} else {
		s.notifier.Notify("Siparişler yeniden yüklendi", notify.SeverityInfo)
	}
	resp.Orders = len(s.snapshot.Orders())
	return resp
}

func (s *OrderService) resetSessions() {
	s.mu.Lock()
	s.sessions = make(map[string]*orders.Engine)
	s.mu.Unlock()
}

// Session returns the view session of userID, creating it on first use.
func (s *OrderService) Session(userID string) *orders.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[userID]; ok {
		return e
	}
	e := s.newEngine()
	e.SetOrders(s.snapshot.Orders())
	s.sessions[userID] = e
	return e
}

// List applies a stateless query to the snapshot.
func (s *OrderService) List(q orders.Query) orders.Result {
	if q.PageSize < 1 {
		q.PageSize = s.pageSize
	}
	res := orders.Apply(s.snapshot.Orders(), q)
	for _, w := range res.Warnings {
		s.logger.Warn("filter ignored", zap.String("reason", w))
	}
	return res
}

func (s *OrderService) Get(id string) (models.Order, error) {
	o, ok := s.snapshot.Find(id)
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}

// Detail returns an order with its status text, delay flag and suggested
// actions.
func (s *OrderService) Detail(id string) (models.OrderDetailResponse, error) {
	o, err := s.Get(id)
	if err != nil {
		return models.OrderDetailResponse{}, err
	}
	now := s.now()
	return models.OrderDetailResponse{
		Order:       o,
		StatusText:  orders.StatusText(o.Status),
		IsDelayed:   orders.IsDelayed(o, now),
		Suggestions: orders.Suggestions(o, now),
	}, nil
}

// Create validates req, builds the order, persists it when a writer is
// configured and adds it to the snapshot and every open session.
func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	o, err := orders.NewOrder(req, orders.NextSequence(s.snapshot.Orders()), s.now())
	if err != nil {
		return models.Order{}, err
	}
	o.RiskLevel = s.scorer.Score(o)

	if s.writer != nil {
		stored, err := s.writer.CreateOrder(ctx, o)
		if err != nil {
			s.notifier.Notify("Sipariş kaydedilemedi: "+err.Error(), notify.SeverityError)
			return models.Order{}, fmt.Errorf("failed to persist order: %w", err)
		}
		o = *stored
	}

	// Holding mu across both steps keeps a session opened in between from
	// seeing the order in the snapshot and then receiving it again.
	s.mu.Lock()
	added := s.snapshot.Add(o)
	for _, e := range s.sessions {
		e.Add(o)
	}
	s.mu.Unlock()

	s.invalidateCache(ctx)

	s.logger.Info("order created", zap.String("order_id", added.ID), zap.String("order_no", added.OrderNo))
	s.notifier.Notify("Sipariş oluşturuldu: "+added.OrderNo, notify.SeveritySuccess)
	return added, nil
}

// UpdateStatus sets the status and progress of an order in the store, the
// snapshot and every open session. A nil progress keeps the current value,
// except that completing an order sets it to 100.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, progress *int) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: unknown status %q", orders.ErrInvalidOrder, status)
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return models.Order{}, fmt.Errorf("%w: progress %d is outside 0..100", orders.ErrInvalidOrder, *progress)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	current, err := s.Get(id)
	if err != nil {
		return models.Order{}, err
	}
	updated := current.Clone()
	updated.Status = status
	switch {
	case progress != nil:
		updated.Progress = *progress
	case status == models.StatusCompleted:
		updated.Progress = 100
	}
	updated.UpdatedAt = s.now()

	if s.store != nil {
		if err := s.store.UpdateOrderStatus(ctx, id, updated.Status, updated.Progress); err != nil {
			s.notifier.Notify("Sipariş güncellenemedi: "+err.Error(), notify.SeverityError)
			return models.Order{}, fmt.Errorf("failed to update order: %w", err)
		}
		if stored, err := s.store.GetOrder(ctx, id); err != nil {
			s.logger.Warn("failed to re-read updated order", zap.String("order_id", id), zap.Error(err))
		} else {
			updated = *stored
		}
	}

	s.mu.Lock()
	replaced, _ := s.snapshot.Replace(updated)
	for _, e := range s.sessions {
		e.Replace(updated)
	}
	s.mu.Unlock()

	s.invalidateCache(ctx)

	s.logger.Info("order status updated",
		zap.String("order_id", id),
		zap.String("status", string(replaced.Status)),
		zap.Int("progress", replaced.Progress))
	s.notifier.Notify(fmt.Sprintf("%s durumu: %s", replaced.OrderNo, orders.StatusText(replaced.Status)), notify.SeverityInfo)
	return replaced, nil
}

// Delete removes an order from the store, the snapshot and every open
// session.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	o, err := s.Get(id)
	if err != nil {
		return err
	}

	if s.store != nil {
		if err := s.store.DeleteOrder(ctx, id); err != nil {
			s.notifier.Notify("Sipariş silinemedi: "+err.Error(), notify.SeverityError)
			return fmt.Errorf("failed to delete order: %w", err)
		}
	}

	s.mu.Lock()
	s.snapshot.Remove(id)
	for _, e := range s.sessions {
		e.Remove(id)
	}
	s.mu.Unlock()

	s.invalidateCache(ctx)

	s.logger.Info("order deleted", zap.String("order_id", id), zap.String("order_no", o.OrderNo))
	s.notifier.Notify("Sipariş silindi: "+o.OrderNo, notify.SeverityWarning)
	return nil
}

func (s *OrderService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate order cache", zap.Error(err))
	}
}

func (s *OrderService) Customers() []string {
	return s.snapshot.Customers()
}

func (s *OrderService) CellTypes() []string {
	return s.snapshot.CellTypes()
}

func (s *OrderService) Count() int {
	return len(s.snapshot.Orders())
}

// StorageEnabled reports whether exports can be uploaded.
func (s *OrderService) StorageEnabled() bool {
	return s.exports != nil
}

// Export writes every order matching q, across all pages, to an xlsx
// workbook.
func (s *OrderService) Export(q orders.Query) (*bytes.Buffer, int, error) {
	res := s.List(q)
	buf, err := export.OrdersToXLSX(res.Filtered)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to export orders: %w", err)
	}
	return buf, len(res.Filtered), nil
}

// UploadExport exports like Export and stores the workbook for userID.
func (s *OrderService) UploadExport(ctx context.Context, userID string, q orders.Query) (models.ExportResponse, error) {
	if s.exports == nil {
		return models.ExportResponse{}, ErrStorageDisabled
	}

	buf, n, err := s.Export(q)
	if err != nil {
		return models.ExportResponse{}, err
	}

	path, url, err := s.exports.UploadExport(ctx, userID, s.now(), buf.Bytes())
	if err != nil {
		s.notifier.Notify("Dışa aktarma yüklenemedi: "+err.Error(), notify.SeverityError)
		return models.ExportResponse{}, err
	}

	s.notifier.Notify("Sipariş listesi dışa aktarıldı", notify.SeverityInfo)
	return models.ExportResponse{Path: path, PublicURL: url, Orders: n}, nil
}

// ListExports returns the stored export paths of userID.
func (s *OrderService) ListExports(ctx context.Context, userID string) ([]string, error) {
	if s.exports == nil {
		return nil, ErrStorageDisabled
	}
	paths, err := s.exports.ListExports(ctx, userID)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

// DeleteExport removes one of userID's stored exports. Paths outside the
// user's export folder are reported as not found.
func (s *OrderService) DeleteExport(ctx context.Context, userID, path string) error {
	if s.exports == nil {
		return ErrStorageDisabled
	}
	path = strings.TrimPrefix(path, "/")
	prefix := "exports/" + userID + "/"
	name := strings.TrimPrefix(path, prefix)
	if userID == "" || name == path || name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %s", ErrExportNotFound, path)
	}

	if err := s.exports.DeleteExport(ctx, path); err != nil {
		if errors.Is(err, export.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrExportNotFound, path)
		}
		return err
	}
	s.logger.Info("export deleted", zap.String("user_id", userID), zap.String("path", path))
	return nil
}
