package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listNotifications(c *gin.Context) {
	actor := actorFrom(c)
	onlyUnread := c.Query("unread") == "true"

	notifications, err := h.deps.NotificationSvc.ListByUser(c.Request.Context(), actor.UserID, onlyUnread)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *handlers) markNotificationRead(c *gin.Context) {
	actor := actorFrom(c)
	if err := h.deps.NotificationSvc.MarkRead(c.Request.Context(), actor.UserID, c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}
