package services_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskfan/internal/models"
	"taskfan/internal/services"
)

func setupNotificationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, recipient uuid.UUID, read bool) models.Notification {
	t.Helper()
	notification := models.Notification{
		ID:          uuid.Must(uuid.NewV4()),
		RecipientID: recipient,
		Type:        models.NotificationTaskAssigned,
		Message:     "You have been assigned to task \"Fix login bug\"",
		Read:        read,
	}
	require.NoError(t, db.Create(&notification).Error)
	return notification
}

func TestNotificationsScopedToRecipient(t *testing.T) {
	db := setupNotificationDB(t)
	service := services.NewNotificationService()

	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	seedNotification(t, db, alice, false)
	seedNotification(t, db, alice, true)
	seedNotification(t, db, bob, false)

	got, err := service.GetByRecipient(db, alice)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, notification := range got {
		assert.Equal(t, alice, notification.RecipientID)
	}

	count, err := service.GetUnreadCount(db, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	db := setupNotificationDB(t)
	service := services.NewNotificationService()

	alice := uuid.Must(uuid.NewV4())
	notification := seedNotification(t, db, alice, false)

	for i := 0; i < 2; i++ {
		got, err := service.MarkRead(db, alice, notification.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)
	}

	count, err := service.GetUnreadCount(db, alice)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkReadForeignNotificationIsNotFound(t *testing.T) {
	db := setupNotificationDB(t)
	service := services.NewNotificationService()

	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	notification := seedNotification(t, db, alice, false)

	_, err := service.MarkRead(db, bob, notification.ID)
	require.Error(t, err)
	mutErr, ok := err.(*services.MutationError)
	require.True(t, ok)
	assert.Equal(t, services.KindNotFound, mutErr.Kind,
		"someone else's notification must read as missing, not forbidden")
}

func TestMarkAllRead(t *testing.T) {
	db := setupNotificationDB(t)
	service := services.NewNotificationService()

	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	seedNotification(t, db, alice, false)
	seedNotification(t, db, alice, false)
	seedNotification(t, db, bob, false)

	require.NoError(t, service.MarkAllRead(db, alice))

	aliceCount, err := service.GetUnreadCount(db, alice)
	require.NoError(t, err)
	assert.Zero(t, aliceCount)

	bobCount, err := service.GetUnreadCount(db, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobCount, "other recipients are untouched")
}

func TestDeleteNotification(t *testing.T) {
	db := setupNotificationDB(t)
	service := services.NewNotificationService()

	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	notification := seedNotification(t, db, alice, false)

	err := service.Delete(db, bob, notification.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindNotFound, err.(*services.MutationError).Kind)

	require.NoError(t, service.Delete(db, alice, notification.ID))

	err = service.Delete(db, alice, notification.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindNotFound, err.(*services.MutationError).Kind)
}
