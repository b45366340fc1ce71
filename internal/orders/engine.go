package orders

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"mets-backend/internal/models"
	"mets-backend/internal/notify"
)

// Source loads the complete order list. Filtering, sorting and paging all
// happen in the engine.
type Source interface {
	Load(ctx context.Context) ([]models.Order, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]models.Order, error)

func (f SourceFunc) Load(ctx context.Context) ([]models.Order, error) {
	return f(ctx)
}

type Event string

const (
	EventOrdersLoaded   Event = "orders_loaded"
	EventFiltersChanged Event = "filters_changed"
	EventSortChanged    Event = "sort_changed"
	EventPageChanged    Event = "page_changed"
)

// Engine holds an order list together with its filter, sort and pagination
// state. Views are recomputed from that state on every read. It is safe for
// concurrent use.
type Engine struct {
	mu        sync.RWMutex
	orders    []models.Order
	customers []string
	cellTypes []string
	filters   Filters
	sort      Sort
	page      int
	pageSize  int

	scorer   RiskScorer
	notifier notify.Notifier
	logger   *zap.Logger

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

type Option func(*Engine)

func WithScorer(s RiskScorer) Option {
	return func(e *Engine) { e.scorer = s }
}

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sort:      DefaultSort,
		page:      1,
		pageSize:  DefaultPageSize,
		scorer:    DefaultScorer(),
		notifier:  notify.Discard{},
		logger:    zap.NewNop(),
		observers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the order list with the contents of src. A nil src loads
// the demo dataset. When src fails the engine installs the demo dataset,
// posts an error notification and returns the wrapped error; the engine is
// never left without data.
func (e *Engine) Load(ctx context.Context, src Source) error {
	if src == nil {
		e.SetOrders(DemoOrders())
		return nil
	}

	loaded, err := src.Load(ctx)
	if err != nil {
		e.logger.Warn("order load failed, using demo orders", zap.Error(err))
		e.notifier.Notify("Siparişler yüklenemedi: "+err.Error(), notify.SeverityError)
		e.SetOrders(DemoOrders())
		return fmt.Errorf("failed to load orders: %w", err)
	}

	e.SetOrders(loaded)
	e.logger.Debug("orders loaded", zap.Int("count", len(loaded)))
	return nil
}

// SetOrders replaces the order list, rescoring risk and rebuilding the
// customer and cell type lists. The current page resets to 1.
func (e *Engine) SetOrders(list []models.Order) {
	e.mu.Lock()
	e.orders = AssignRisk(list, e.scorer)
	e.customers = Customers(e.orders)
	e.cellTypes = CellTypes(e.orders)
	e.page = 1
	e.mu.Unlock()

	e.emit(EventOrdersLoaded)
}

// Add appends an order to the list after scoring it.
func (e *Engine) Add(o models.Order) models.Order {
	o = o.Clone()
	e.mu.Lock()
	o.RiskLevel = e.scorer.Score(o)
	e.orders = append(e.orders, o)
	e.customers = Customers(e.orders)
	e.cellTypes = CellTypes(e.orders)
	e.mu.Unlock()

	e.emit(EventOrdersLoaded)
	return o
}

// Replace swaps in a new version of the order with the same id, rescoring
// it. It returns false when no such order is loaded.
func (e *Engine) Replace(o models.Order) (models.Order, bool) {
	o = o.Clone()
	e.mu.Lock()
	i := e.indexLocked(o.ID)
	if i < 0 {
		e.mu.Unlock()
		return models.Order{}, false
	}
	o.RiskLevel = e.scorer.Score(o)
	e.orders[i] = o
	e.customers = Customers(e.orders)
	e.cellTypes = CellTypes(e.orders)
	e.mu.Unlock()

	e.emit(EventOrdersLoaded)
	return o.Clone(), true
}

// Remove drops the order with the given id. It returns false when no such
// order is loaded.
func (e *Engine) Remove(id string) bool {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return false
	}
	e.orders = append(e.orders[:i:i], e.orders[i+1:]...)
	e.customers = Customers(e.orders)
	e.cellTypes = CellTypes(e.orders)
	if pages := e.totalPagesLocked(); e.page > pages {
		e.page = pages
	}
	e.mu.Unlock()

	e.emit(EventOrdersLoaded)
	return true
}

func (e *Engine) indexLocked(id string) int {
	for i, o := range e.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Orders returns a copy of the loaded order list.
func (e *Engine) Orders() []models.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Order, len(e.orders))
	copy(out, e.orders)
	return out
}

// Find returns the order with the given id.
func (e *Engine) Find(id string) (models.Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, o := range e.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return models.Order{}, false
}

// SetFilter sets one filter field and resets the page to 1.
func (e *Engine) SetFilter(field, value string) error {
	e.mu.Lock()
	if err := e.filters.Set(field, value); err != nil {
		e.mu.Unlock()
		return err
	}
	e.page = 1
	e.mu.Unlock()

	e.emit(EventFiltersChanged)
	return nil
}

// SetFilters replaces the whole filter set and resets the page to 1.
func (e *Engine) SetFilters(f Filters) {
	e.mu.Lock()
	e.filters = f
	e.page = 1
	e.mu.Unlock()

	e.emit(EventFiltersChanged)
}

func (e *Engine) ClearFilters() {
	e.SetFilters(Filters{})
}

func (e *Engine) Filters() Filters {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filters
}

// SetSort selects a sort field; choosing the active field again flips the
// direction.
func (e *Engine) SetSort(field string) {
	e.mu.Lock()
	e.sort = e.sort.Toggle(field)
	e.mu.Unlock()

	e.emit(EventSortChanged)
}

func (e *Engine) Sort() Sort {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sort
}

// GoToPage moves to page n. It does nothing and returns false when n is
// outside [1, TotalPages].
func (e *Engine) GoToPage(n int) bool {
	e.mu.Lock()
	if n < 1 || n > e.totalPagesLocked() {
		e.mu.Unlock()
		return false
	}
	e.page = n
	e.mu.Unlock()

	e.emit(EventPageChanged)
	return true
}

func (e *Engine) NextPage() bool {
	return e.stepPage(1)
}

func (e *Engine) PrevPage() bool {
	return e.stepPage(-1)
}

// stepPage moves by delta pages relative to the page current at the time
// the lock is taken.
func (e *Engine) stepPage(delta int) bool {
	e.mu.Lock()
	n := e.page + delta
	if n < 1 || n > e.totalPagesLocked() {
		e.mu.Unlock()
		return false
	}
	e.page = n
	e.mu.Unlock()

	e.emit(EventPageChanged)
	return true
}

func (e *Engine) CurrentPage() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.page
}

func (e *Engine) PageSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pageSize
}

// SetPageSize changes the page size and returns to page 1. Sizes below one
// are ignored.
func (e *Engine) SetPageSize(n int) {
	if n < 1 {
		return
	}
	e.mu.Lock()
	e.pageSize = n
	e.page = 1
	e.mu.Unlock()

	e.emit(EventPageChanged)
}

// Filtered returns the filtered and sorted orders.
func (e *Engine) Filtered() []models.Order {
	return e.View().Filtered
}

// Page returns the current page of the filtered and sorted orders.
func (e *Engine) Page() []models.Order {
	return e.View().Items
}

func (e *Engine) TotalPages() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalPagesLocked()
}

func (e *Engine) totalPagesLocked() int {
	filtered, _ := Filter(e.orders, e.filters)
	return TotalPages(len(filtered), e.pageSize)
}

func (e *Engine) Customers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.customers...)
}

func (e *Engine) CellTypes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.cellTypes...)
}

// View computes the full view for the current state.
func (e *Engine) View() Result {
	e.mu.RLock()
	q := Query{Filters: e.filters, Sort: e.sort, Page: e.page, PageSize: e.pageSize}
	list := e.orders
	e.mu.RUnlock()

	res := Apply(list, q)
	for _, w := range res.Warnings {
		e.logger.Warn("filter ignored", zap.String("reason", w))
	}
	return res
}

// State returns the view in its API form.
func (e *Engine) State() models.ViewResponse {
	f, s := e.Filters(), e.Sort()
	res := e.View()
	return models.ViewResponse{
		Filters:    f.toModel(),
		Sort:       s.toModel(),
		Orders:     res.Items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	}
}

// Subscribe registers fn to be called after every state change. The
// returned function removes the subscription.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.obsMu.Lock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	e.obsMu.Unlock()

	return func() {
		e.obsMu.Lock()
		delete(e.observers, id)
		e.obsMu.Unlock()
	}
}

func (e *Engine) emit(ev Event) {
	e.obsMu.Lock()
	fns := make([]func(Event), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
