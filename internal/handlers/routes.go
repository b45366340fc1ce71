package handlers

import "github.com/gin-gonic/gin"

type Handlers struct {
	Health        *HealthHandler
	Orders        *OrdersHandler
	View          *ViewHandler
	AI            *AIHandler
	Notifications *NotificationsHandler
}

// RegisterRoutes mounts /health publicly and everything else under /api/v1
// behind auth.
func RegisterRoutes(router *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")
	api.Use(auth)
	{
		api.GET("/orders", h.Orders.ListOrders)
		api.POST("/orders", h.Orders.CreateOrder)
		api.POST("/orders/reload", h.Orders.ReloadOrders)
		api.GET("/orders/customers", h.Orders.ListCustomers)
		api.GET("/orders/cell-types", h.Orders.ListCellTypes)
		api.GET("/orders/export", h.Orders.ExportOrders)
		api.GET("/orders/:order_id", h.Orders.GetOrder)
		api.PATCH("/orders/:order_id/status", h.Orders.UpdateOrderStatus)
		api.DELETE("/orders/:order_id", h.Orders.DeleteOrder)
		api.POST("/orders/:order_id/analyze", h.Orders.AnalyzeOrder)

		api.GET("/exports", h.Orders.ListExports)
		api.DELETE("/exports/*path", h.Orders.DeleteExport)

		api.GET("/view", h.View.GetView)
		api.PUT("/view/filters", h.View.UpdateFilter)
		api.DELETE("/view/filters", h.View.ClearFilters)
		api.PUT("/view/sort", h.View.UpdateSort)
		api.POST("/view/page", h.View.ChangePage)
		api.POST("/view/smart-filter", h.View.SmartFilter)

		api.POST("/ai/chat", h.AI.Chat)
		api.POST("/ai/ask", h.AI.Ask)
		api.GET("/ai/status", h.AI.Status)

		api.GET("/notifications", h.Notifications.ListNotifications)
	}
}
