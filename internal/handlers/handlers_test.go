package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"mets-backend/internal/ai"
	"mets-backend/internal/export"
	"mets-backend/internal/handlers"
	"mets-backend/internal/middleware"
	"mets-backend/internal/models"
	"mets-backend/internal/notify"
	"mets-backend/internal/services"
)

var fixedNow = time.Date(2024, 10, 25, 9, 0, 0, 0, time.UTC)

type testServer struct {
	router *gin.Engine
	feed   *notify.Feed
}

// fakeAuth stands in for the JWT middleware; the user comes from X-Test-User.
func fakeAuth(c *gin.Context) {
	user := c.GetHeader("X-Test-User")
	if user == "" {
		user = "user-1"
	}
	c.Set(middleware.UserIDKey, user)
	c.Next()
}

func newTestServer(t *testing.T, exports *fakeExports) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	feed := notify.NewFeed(0, nil)
	cfg := services.OrderServiceConfig{
		Notifier: feed,
		Now:      func() time.Time { return fixedNow },
	}
	if exports != nil {
		cfg.Exports = exports
	}
	orderService := services.NewOrderService(cfg)
	require.NoError(t, orderService.Load(context.Background()))

	aiService := ai.NewService(ai.Config{ActiveService: ai.OpenRouterID}, ai.NoDelaySimulator(), nil)

	router := gin.New()
	handlers.RegisterRoutes(router, handlers.Handlers{
		Health:        handlers.NewHealthHandler(orderService, "demo"),
		Orders:        handlers.NewOrdersHandler(orderService, aiService),
		View:          handlers.NewViewHandler(orderService),
		AI:            handlers.NewAIHandler(aiService),
		Notifications: handlers.NewNotificationsHandler(feed),
	}, fakeAuth)

	return &testServer{router: router, feed: feed}
}

func (s *testServer) do(t *testing.T, method, path string, body any, user string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type fakeExports struct {
	userID string
	paths  []string
}

func (u *fakeExports) UploadExport(_ context.Context, userID string, _ time.Time, _ []byte) (string, string, error) {
	u.userID = userID
	return "exports/" + userID + "/x.xlsx", "https://cdn.example/exports/" + userID + "/x.xlsx", nil
}

func (u *fakeExports) ListExports(_ context.Context, userID string) ([]string, error) {
	var out []string
	for _, p := range u.paths {
		if strings.HasPrefix(p, "exports/"+userID+"/") {
			out = append(out, p)
		}
	}
	return out, nil
}

func (u *fakeExports) DeleteExport(_ context.Context, path string) error {
	for i, p := range u.paths {
		if p == path {
			u.paths = append(u.paths[:i], u.paths[i+1:]...)
			return nil
		}
	}
	return export.ErrNotFound
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "demo", resp.OrderSource)
	assert.Equal(t, 7, resp.Orders)
}

func TestListOrders(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("default sort is newest first", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/orders", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[models.OrderListResponse](t, w)
		assert.Equal(t, 7, resp.Total)
		assert.Equal(t, 1, resp.TotalPages)
		require.Len(t, resp.Orders, 7)
		assert.Equal(t, "order-003", resp.Orders[0].ID)
		assert.Equal(t, "order-007", resp.Orders[6].ID)
	})

	t.Run("filters and paging", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/orders?customer=ayeda%C5%9F&page_size=1&page=2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[models.OrderListResponse](t, w)
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Equal(t, 2, resp.Page)
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, "order-006", resp.Orders[0].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/orders?status=delayed", nil, "")
		resp := decode[models.OrderListResponse](t, w)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("ascending sort", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/orders?sort=orderDate&dir=asc", nil, "")
		resp := decode[models.OrderListResponse](t, w)
		require.NotEmpty(t, resp.Orders)
		assert.Equal(t, "order-007", resp.Orders[0].ID)
	})

	for _, query := range []string{"page=0", "page=x", "page_size=-1", "dir=up"} {
		t.Run("rejects "+query, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/orders?"+query, nil, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetOrder(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/orders/order-006", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.OrderDetailResponse](t, w)
	assert.Equal(t, "#0424-1219", resp.Order.OrderNo)
	assert.True(t, resp.IsDelayed)
	assert.Len(t, resp.Suggestions, 3)

	w = s.do(t, http.MethodGet, "/api/v1/orders/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t, nil)

	req := models.CreateOrderRequest{
		OrderDate:    "2024-10-25",
		CustomerInfo: models.CustomerInfo{Name: "BAŞKENT EDAŞ", DocumentNo: "PO-2024-K001"},
		Cells:        []models.Cell{{ProductTypeCode: "RM 36 CB", Quantity: 2, DeliveryDate: "2024-12-20"}},
	}
	w := s.do(t, http.MethodPost, "/api/v1/orders", req, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[models.Order](t, w)
	assert.Equal(t, "#1024-1252", created.OrderNo)
	assert.Equal(t, models.StatusPlanned, created.Status)

	health := decode[models.HealthResponse](t, s.do(t, http.MethodGet, "/health", nil, ""))
	assert.Equal(t, 8, health.Orders)

	recent := s.feed.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "Sipariş oluşturuldu: #1024-1252", recent[0].Message)

	t.Run("missing customer", func(t *testing.T) {
		bad := req
		bad.CustomerInfo.Name = ""
		w := s.do(t, http.MethodPost, "/api/v1/orders", bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCustomersAndCellTypes(t *testing.T) {
	s := newTestServer(t, nil)

	customers := decode[models.StringListResponse](t, s.do(t, http.MethodGet, "/api/v1/orders/customers", nil, ""))
	assert.Len(t, customers.Items, 6)
	assert.Contains(t, customers.Items, "ÇORUH EDAŞ")

	cellTypes := decode[models.StringListResponse](t, s.do(t, http.MethodGet, "/api/v1/orders/cell-types", nil, ""))
	assert.ElementsMatch(t, []string{"RM 36 CB", "RM 36 LB", "RM 36 FL"}, cellTypes.Items)
}

func TestReloadOrders(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/orders/reload", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.ReloadResponse](t, w)
	assert.Equal(t, 7, resp.Orders)
	assert.False(t, resp.Fallback)
}

func TestExportOrders(t *testing.T) {
	t.Run("download", func(t *testing.T) {
		s := newTestServer(t, nil)

		w := s.do(t, http.MethodGet, "/api/v1/orders/export?status=delayed", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"siparisler-")

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(export.SheetName)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("upload without storage", func(t *testing.T) {
		s := newTestServer(t, nil)
		w := s.do(t, http.MethodGet, "/api/v1/orders/export?upload=true", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("upload", func(t *testing.T) {
		uploader := &fakeExports{}
		s := newTestServer(t, uploader)

		w := s.do(t, http.MethodGet, "/api/v1/orders/export?upload=true", nil, "user-9")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[models.ExportResponse](t, w)
		assert.Equal(t, "user-9", uploader.userID)
		assert.Equal(t, 7, resp.Orders)
		assert.Equal(t, "https://cdn.example/exports/user-9/x.xlsx", resp.PublicURL)
	})
}

func TestAnalyzeOrder(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/orders/order-001/analyze", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.ChatResponse](t, w)
	assert.True(t, resp.IsDemo)
	assert.NotEmpty(t, resp.Text)

	w = s.do(t, http.MethodPost, "/api/v1/orders/missing/analyze", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestView_SessionsArePerUser(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPut, "/api/v1/view/filters", models.FilterUpdateRequest{Field: "status", Value: "delayed"}, "alice")
	require.Equal(t, http.StatusOK, w.Code)
	alice := decode[models.ViewResponse](t, w)
	assert.Equal(t, "delayed", alice.Filters.Status)
	assert.Equal(t, 2, alice.Total)

	bob := decode[models.ViewResponse](t, s.do(t, http.MethodGet, "/api/v1/view", nil, "bob"))
	assert.Equal(t, "", bob.Filters.Status)
	assert.Equal(t, 7, bob.Total)

	again := decode[models.ViewResponse](t, s.do(t, http.MethodGet, "/api/v1/view", nil, "alice"))
	assert.Equal(t, 2, again.Total)

	cleared := decode[models.ViewResponse](t, s.do(t, http.MethodDelete, "/api/v1/view/filters", nil, "alice"))
	assert.Equal(t, 7, cleared.Total)
}

func TestView_UnknownFilter(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPut, "/api/v1/view/filters", models.FilterUpdateRequest{Field: "color", Value: "red"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/view/filters", map[string]string{"value": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestView_SortToggles(t *testing.T) {
	s := newTestServer(t, nil)

	first := decode[models.ViewResponse](t, s.do(t, http.MethodPut, "/api/v1/view/sort", models.SortRequest{Field: "orderNo"}, ""))
	assert.Equal(t, models.SortState{Field: "orderNo", Direction: "desc"}, first.Sort)

	second := decode[models.ViewResponse](t, s.do(t, http.MethodPut, "/api/v1/view/sort", models.SortRequest{Field: "orderNo"}, ""))
	assert.Equal(t, models.SortState{Field: "orderNo", Direction: "asc"}, second.Sort)
}

func TestView_Paging(t *testing.T) {
	s := newTestServer(t, nil)

	// 7 orders at the default page size fit on one page.
	next := decode[models.ViewResponse](t, s.do(t, http.MethodPost, "/api/v1/view/page", models.PageRequest{Action: "next"}, ""))
	assert.Equal(t, 1, next.Page)

	jump := decode[models.ViewResponse](t, s.do(t, http.MethodPost, "/api/v1/view/page", models.PageRequest{Page: 5}, ""))
	assert.Equal(t, 1, jump.Page)

	w := s.do(t, http.MethodPost, "/api/v1/view/page", models.PageRequest{Action: "last"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/view/page", map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestView_PageSize(t *testing.T) {
	s := newTestServer(t, nil)

	resp := decode[models.ViewResponse](t, s.do(t, http.MethodPost, "/api/v1/view/page", models.PageRequest{PageSize: 3}, ""))
	assert.Equal(t, 3, resp.PageSize)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 1, resp.Page)
	assert.Len(t, resp.Orders, 3)

	resp = decode[models.ViewResponse](t, s.do(t, http.MethodPost, "/api/v1/view/page", models.PageRequest{Action: "next"}, ""))
	assert.Equal(t, 2, resp.Page)

	resp = decode[models.ViewResponse](t, s.do(t, http.MethodPost, "/api/v1/view/page", models.PageRequest{PageSize: 2, Page: 4}, ""))
	assert.Equal(t, 2, resp.PageSize)
	assert.Equal(t, 4, resp.Page)
	assert.Len(t, resp.Orders, 1)

	w := s.do(t, http.MethodPost, "/api/v1/view/page", map[string]any{"page_size": -1}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	other := decode[models.ViewResponse](t, s.do(t, http.MethodGet, "/api/v1/view", nil, "user-2"))
	assert.Equal(t, 10, other.PageSize)
}

func TestView_SmartFilterBody(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/view/smart-filter", map[string]any{"query": 5}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/view/smart-filter", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPatch, "/api/v1/orders/order-003/status", map[string]any{"status": "in_progress", "progress": 15}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	o := decode[models.Order](t, w)
	assert.Equal(t, models.StatusInProgress, o.Status)
	assert.Equal(t, 15, o.Progress)
	assert.Equal(t, models.RiskMedium, o.RiskLevel)

	detail := decode[models.OrderDetailResponse](t, s.do(t, http.MethodGet, "/api/v1/orders/order-003", nil, ""))
	assert.Equal(t, models.StatusInProgress, detail.Order.Status)

	w = s.do(t, http.MethodPatch, "/api/v1/orders/order-003/status", map[string]any{"status": "shipped"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/v1/orders/order-003/status", map[string]any{"progress": 10}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/v1/orders/nope/status", map[string]any{"status": "completed"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodDelete, "/api/v1/orders/order-005", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders/order-005", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	list := decode[models.OrderListResponse](t, s.do(t, http.MethodGet, "/api/v1/orders", nil, ""))
	assert.Equal(t, 6, list.Total)

	w = s.do(t, http.MethodDelete, "/api/v1/orders/order-005", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExports(t *testing.T) {
	t.Run("without storage", func(t *testing.T) {
		s := newTestServer(t, nil)
		assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/api/v1/exports", nil, "").Code)
		assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodDelete, "/api/v1/exports/exports/user-1/a.xlsx", nil, "").Code)
	})

	t.Run("list and delete own exports", func(t *testing.T) {
		exports := &fakeExports{paths: []string{"exports/user-1/a.xlsx", "exports/user-2/b.xlsx"}}
		s := newTestServer(t, exports)

		resp := decode[models.ExportListResponse](t, s.do(t, http.MethodGet, "/api/v1/exports", nil, ""))
		assert.Equal(t, []string{"exports/user-1/a.xlsx"}, resp.Exports)
		assert.Equal(t, 1, resp.Count)

		w := s.do(t, http.MethodDelete, "/api/v1/exports/exports/user-2/b.xlsx", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, http.MethodDelete, "/api/v1/exports/exports/user-1/a.xlsx", nil, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"exports/user-2/b.xlsx"}, exports.paths)

		empty := decode[models.ExportListResponse](t, s.do(t, http.MethodGet, "/api/v1/exports", nil, ""))
		assert.Empty(t, empty.Exports)
		assert.Equal(t, 0, empty.Count)
	})
}

func TestView_SmartFilter(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/view/smart-filter", models.SmartFilterRequest{Query: "ayedaş gecikmiş siparişleri"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.ViewResponse](t, w)
	assert.Equal(t, "delayed", resp.Filters.Status)
	assert.Equal(t, "AYEDAŞ", resp.Filters.CustomerName)
	assert.Equal(t, "", resp.Filters.SearchQuery)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "order-001", resp.Orders[0].ID)

	recent := s.feed.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "AI filtreleri uygulandı", recent[0].Message)
}

func TestAI(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("chat falls back to demo", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/ai/chat", models.ChatRequest{Message: "merhaba"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[models.ChatResponse](t, w)
		assert.True(t, resp.IsDemo)
		assert.Equal(t, "Demo: Merhaba! Size nasıl yardımcı olabilirim?", resp.Text)
	})

	t.Run("ask requires a prompt", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/ai/ask", map[string]string{}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/ai/status", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[models.ServiceStatus](t, w)
		assert.Equal(t, ai.OpenRouterID, resp.ActiveService)
	})
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t, nil)
	s.feed.Notify("first", notify.SeverityInfo)
	s.feed.Notify("second", notify.SeverityWarning)

	resp := decode[models.NotificationListResponse](t, s.do(t, http.MethodGet, "/api/v1/notifications?limit=1", nil, ""))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "second", resp.Notifications[0].Message)
	assert.Equal(t, "warning", resp.Notifications[0].Severity)
}
