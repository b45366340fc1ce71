package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"mets-backend/internal/ai"
	"mets-backend/internal/export"
	"mets-backend/internal/middleware"
	"mets-backend/internal/models"
	"mets-backend/internal/orders"
	"mets-backend/internal/services"
)

type OrdersHandler struct {
	orders *services.OrderService
	ai     *ai.Service
}

func NewOrdersHandler(orderService *services.OrderService, aiService *ai.Service) *OrdersHandler {
	return &OrdersHandler{orders: orderService, ai: aiService}
}

// ListOrders godoc
// @Summary     List orders
// @Description Filters, sorts and pages the order list. Every filter is optional; an out of range page is clamped.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       search    query string false "Free text search"
// @Param       cell_type query string false "Cell product type code"
// @Param       status    query string false "Order status"
// @Param       date_start query string false "Earliest order date (YYYY-MM-DD)"
// @Param       date_end  query string false "Latest order date (YYYY-MM-DD)"
// @Param       priority  query string false "Priority"
// @Param       customer  query string false "Customer name"
// @Param       risk      query string false "Risk level"
// @Param       sort      query string false "Sort field, e.g. customerInfo.name"
// @Param       dir       query string false "asc or desc"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} models.OrderListResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid query", Message: err.Error()})
		return
	}

	res := h.orders.List(q)
	c.JSON(http.StatusOK, models.OrderListResponse{
		Orders:     res.Items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

// CreateOrder godoc
// @Summary     Create an order
// @Description Creates a planned order. Missing cell fields get the order form defaults.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateOrderRequest true "Order"
// @Success     201 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	o, err := h.orders.Create(c.Request.Context(), req)
	if errors.Is(err, orders.ErrInvalidOrder) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order", Message: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create order", Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, o)
}

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderDetailResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	detail, err := h.orders.Detail(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateOrderStatus godoc
// @Summary     Update order status
// @Description Sets the status and, optionally, the progress of an order. Completing an order without a progress sets it to 100.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string                     true "Order ID"
// @Param       request  body models.StatusUpdateRequest true "New status"
// @Success     200 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/orders/{order_id}/status [patch]
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("order_id"), req.Status, req.Progress)
	switch {
	case errors.Is(err, orders.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid status", Message: err.Error()})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found", Message: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update order", Message: err.Error()})
	default:
		c.JSON(http.StatusOK, o)
	}
}

// DeleteOrder godoc
// @Summary     Delete an order
// @Tags        orders
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/orders/{order_id} [delete]
func (h *OrdersHandler) DeleteOrder(c *gin.Context) {
	err := h.orders.Delete(c.Request.Context(), c.Param("order_id"))
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found", Message: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete order", Message: err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

// AnalyzeOrder godoc
// @Summary     Analyze an order with AI
// @Description Asks the active AI provider for a delay risk assessment. Falls back to a demo answer.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.ChatResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/orders/{order_id}/analyze [post]
func (h *OrdersHandler) AnalyzeOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.ai.AnalyzeOrder(c.Request.Context(), o))
}

// ReloadOrders godoc
// @Summary     Reload orders
// @Description Reloads the order list from the configured source and resets every view session. On failure the demo orders are served.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ReloadResponse
// @Router      /api/v1/orders/reload [post]
func (h *OrdersHandler) ReloadOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.Reload(c.Request.Context()))
}

// ListCustomers godoc
// @Summary     List customers
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.StringListResponse
// @Router      /api/v1/orders/customers [get]
func (h *OrdersHandler) ListCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, models.StringListResponse{Items: h.orders.Customers()})
}

// ListCellTypes godoc
// @Summary     List cell types
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.StringListResponse
// @Router      /api/v1/orders/cell-types [get]
func (h *OrdersHandler) ListCellTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.StringListResponse{Items: h.orders.CellTypes()})
}

// ExportOrders godoc
// @Summary     Export orders
// @Description Exports every order matching the list filters as xlsx. With upload=true the file is stored and its URL returned.
// @Tags        orders
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce     json
// @Security    Bearer
// @Param       upload query bool false "Store the file instead of downloading it"
// @Success     200 {object} models.ExportResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/v1/orders/export [get]
func (h *OrdersHandler) ExportOrders(c *gin.Context) {
	q, err := orderQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid query", Message: err.Error()})
		return
	}

	if c.Query("upload") == "true" {
		resp, err := h.orders.UploadExport(c.Request.Context(), middleware.UserID(c), q)
		if errors.Is(err, services.ErrStorageDisabled) {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "export storage not configured"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to upload export", Message: err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	buf, _, err := h.orders.Export(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to export orders", Message: err.Error()})
		return
	}

	filename := fmt.Sprintf("siparisler-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// ListExports godoc
// @Summary     List stored exports
// @Description Lists the workbooks the caller stored with upload=true, newest first.
// @Tags        exports
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ExportListResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/v1/exports [get]
func (h *OrdersHandler) ListExports(c *gin.Context) {
	paths, err := h.orders.ListExports(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, services.ErrStorageDisabled) {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "export storage not configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list exports", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.ExportListResponse{Exports: paths, Count: len(paths)})
}

// DeleteExport godoc
// @Summary     Delete a stored export
// @Tags        exports
// @Security    Bearer
// @Param       path path string true "Storage path, e.g. exports/{user}/{timestamp}.xlsx"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/v1/exports/{path} [delete]
func (h *OrdersHandler) DeleteExport(c *gin.Context) {
	err := h.orders.DeleteExport(c.Request.Context(), middleware.UserID(c), c.Param("path"))
	switch {
	case errors.Is(err, services.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "export storage not configured"})
	case errors.Is(err, services.ErrExportNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "export not found", Message: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete export", Message: err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}
