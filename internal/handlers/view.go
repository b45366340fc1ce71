package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"mets-backend/internal/middleware"
	"mets-backend/internal/models"
	"mets-backend/internal/orders"
	"mets-backend/internal/services"
)

// ViewHandler serves the per-user order list session: its filters, sort
// and page survive between requests until the orders are reloaded.
type ViewHandler struct {
	orders *services.OrderService
}

func NewViewHandler(orderService *services.OrderService) *ViewHandler {
	return &ViewHandler{orders: orderService}
}

func (h *ViewHandler) session(c *gin.Context) *orders.Engine {
	return h.orders.Session(middleware.UserID(c))
}

// GetView godoc
// @Summary     Get the order list session
// @Tags        view
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ViewResponse
// @Router      /api/v1/view [get]
func (h *ViewHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).State())
}

// UpdateFilter godoc
// @Summary     Set one filter
// @Description Sets a filter field and returns to page 1. An empty value clears the field.
// @Tags        view
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.FilterUpdateRequest true "Filter"
// @Success     200 {object} models.ViewResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/view/filters [put]
func (h *ViewHandler) UpdateFilter(c *gin.Context) {
	var req models.FilterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	s := h.session(c)
	if err := s.SetFilter(req.Field, req.Value); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, orders.ErrUnknownFilter) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{Error: "invalid filter", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.State())
}

// ClearFilters godoc
// @Summary     Clear all filters
// @Tags        view
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ViewResponse
// @Router      /api/v1/view/filters [delete]
func (h *ViewHandler) ClearFilters(c *gin.Context) {
	s := h.session(c)
	s.ClearFilters()
	c.JSON(http.StatusOK, s.State())
}

// UpdateSort godoc
// @Summary     Sort by a field
// @Description Sorting by the active field again flips the direction.
// @Tags        view
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SortRequest true "Sort field"
// @Success     200 {object} models.ViewResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/view/sort [put]
func (h *ViewHandler) UpdateSort(c *gin.Context) {
	var req models.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	s := h.session(c)
	s.SetSort(req.Field)
	c.JSON(http.StatusOK, s.State())
}

// ChangePage godoc
// @Summary     Change page
// @Description Moves to {page}, or to the next or previous page with {action}. A positive {page_size} changes the page size and returns to page 1 before any move. Out of range moves leave the page unchanged.
// @Tags        view
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.PageRequest true "Page"
// @Success     200 {object} models.ViewResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/view/page [post]
func (h *ViewHandler) ChangePage(c *gin.Context) {
	var req models.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	switch {
	case req.PageSize < 0:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "page_size must be positive"})
		return
	case req.Action != "" && req.Action != "next" && req.Action != "prev":
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "action must be next or prev"})
		return
	case req.Action == "" && req.Page == 0 && req.PageSize == 0:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "page, page_size or action (next, prev) is required"})
		return
	}

	s := h.session(c)
	if req.PageSize > 0 {
		s.SetPageSize(req.PageSize)
	}
	switch {
	case req.Action == "next":
		s.NextPage()
	case req.Action == "prev":
		s.PrevPage()
	case req.Page != 0:
		s.GoToPage(req.Page)
	}
	c.JSON(http.StatusOK, s.State())
}

// SmartFilter godoc
// @Summary     Apply AI filters
// @Description Translates a free text query (or the current search text) into structured filters.
// @Tags        view
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SmartFilterRequest false "Query"
// @Success     200 {object} models.ViewResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/view/smart-filter [post]
func (h *ViewHandler) SmartFilter(c *gin.Context) {
	var req models.SmartFilterRequest
	// An empty body means "use the current search text".
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	s := h.session(c)
	s.SmartFilter(req.Query)
	c.JSON(http.StatusOK, s.State())
}
