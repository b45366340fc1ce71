package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mets-backend/internal/models"
	"mets-backend/internal/services"
)

type HealthHandler struct {
	orders *services.OrderService
	source string
}

func NewHealthHandler(orders *services.OrderService, source string) *HealthHandler {
	return &HealthHandler{orders: orders, source: source}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and the number of loaded orders
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "ok",
		OrderSource: h.source,
		Orders:      h.orders.Count(),
	})
}
