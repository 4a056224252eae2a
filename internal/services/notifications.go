package services

import (
	"errors"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"taskfan/internal/models"
)

// NotificationService is the read/ack surface for persisted notifications.
// It sits outside the mutation pipeline: recipients poll, mark read, and
// delete; creation happens only inside fan-out.
type NotificationService interface {
	GetByRecipient(db *gorm.DB, recipientID uuid.UUID) ([]models.Notification, error)
	GetUnreadCount(db *gorm.DB, recipientID uuid.UUID) (int64, error)
	MarkRead(db *gorm.DB, recipientID, notificationID uuid.UUID) (models.Notification, error)
	MarkAllRead(db *gorm.DB, recipientID uuid.UUID) error
	Delete(db *gorm.DB, recipientID, notificationID uuid.UUID) error
}

type NotificationServiceImpl struct{}

func NewNotificationService() *NotificationServiceImpl {
	return &NotificationServiceImpl{}
}

func (s *NotificationServiceImpl) GetByRecipient(db *gorm.DB, recipientID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.Where("recipient_id = ?", recipientID).Order("created_at desc").Find(&notifications).Error
	return notifications, err
}

func (s *NotificationServiceImpl) GetUnreadCount(db *gorm.DB, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips the read flag. Scoping the lookup by recipient means a
// notification owned by someone else reads as not found, never as forbidden.
func (s *NotificationServiceImpl) MarkRead(db *gorm.DB, recipientID, notificationID uuid.UUID) (models.Notification, error) {
	var notification models.Notification
	err := db.Where("id = ? AND recipient_id = ?", notificationID, recipientID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notification, NotFoundError("notification not found")
		}
		return notification, UnexpectedError("failed to load notification", err)
	}

	if !notification.Read {
		notification.Read = true
		if err := db.Model(&notification).Update("read", true).Error; err != nil {
			return notification, UnexpectedError("failed to mark notification read", err)
		}
	}

	return notification, nil
}

func (s *NotificationServiceImpl) MarkAllRead(db *gorm.DB, recipientID uuid.UUID) error {
	err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
	if err != nil {
		return UnexpectedError("failed to mark notifications read", err)
	}
	return nil
}

func (s *NotificationServiceImpl) Delete(db *gorm.DB, recipientID, notificationID uuid.UUID) error {
	result := db.Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return UnexpectedError("failed to delete notification", result.Error)
	}
	if result.RowsAffected == 0 {
		return NotFoundError("notification not found")
	}
	return nil
}
