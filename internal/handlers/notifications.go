package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/middleware"
	"taskfan/internal/services"
)

type NotificationHandler struct {
	db            *gorm.DB
	notifications services.NotificationService
}

func NewNotificationHandler(db *gorm.DB, notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{db: db, notifications: notifications}
}

// GetNotifications lists the caller's own notifications; there is no way to
// read anyone else's.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	notifications, err := h.notifications.GetByRecipient(h.db, actor.ID)
	if err != nil {
		handleMutationError(c, err)
		return
	}

	unread, err := h.notifications.GetUnreadCount(h.db, actor.ID)
	if err != nil {
		handleMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid notification id"})
		return
	}

	notification, err := h.notifications.MarkRead(h.db, actor.ID, id)
	if err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, notification)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	if err := h.notifications.MarkAllRead(h.db, actor.ID); err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "User not authenticated"})
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))
	if id == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "invalid notification id"})
		return
	}

	if err := h.notifications.Delete(h.db, actor.ID, id); err != nil {
		handleMutationError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
