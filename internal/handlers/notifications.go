package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"mets-backend/internal/models"
	"mets-backend/internal/notify"
)

type NotificationsHandler struct {
	feed *notify.Feed
}

func NewNotificationsHandler(feed *notify.Feed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// ListNotifications godoc
// @Summary     Recent notifications
// @Description Returns the newest notifications first.
// @Tags        notifications
// @Produce     json
// @Security    Bearer
// @Param       limit query int false "Maximum number of notifications" default(20)
// @Success     200 {object} models.NotificationListResponse
// @Router      /api/v1/notifications [get]
func (h *NotificationsHandler) ListNotifications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	recent := h.feed.Recent(limit)
	out := make([]models.NotificationResponse, len(recent))
	for i, n := range recent {
		out[i] = models.NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			Severity:  string(n.Severity),
			CreatedAt: n.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, models.NotificationListResponse{Notifications: out})
}
